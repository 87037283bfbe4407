package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bssic/school-portal-api/internal/models"
	"github.com/bssic/school-portal-api/internal/service"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/response"
)

// ResultHandler exposes result publication and lookup endpoints.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// Lookup godoc
// @Summary Look up a student result by roll number
// @Tags Results
// @Produce json
// @Param rollNumber path int true "Roll number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/{rollNumber} [get]
func (h *ResultHandler) Lookup(c *gin.Context) {
	roll, err := rollNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.results.Lookup(c.Request.Context(), roll)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Marksheet godoc
// @Summary Download a result as a PDF marksheet
// @Tags Results
// @Produce application/pdf
// @Param rollNumber path int true "Roll number"
// @Success 200 {string} string "PDF data"
// @Router /results/{rollNumber}/marksheet [get]
func (h *ResultHandler) Marksheet(c *gin.Context) {
	roll, err := rollNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.results.Marksheet(c.Request.Context(), roll)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("marksheet-%d.pdf", roll)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Submit godoc
// @Summary Publish a student result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.SubmitResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/results [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.results.Submit(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List published results
// @Tags Results
// @Produce json
// @Param class query string false "Filter by class"
// @Param subject query string false "Filter by subject"
// @Param sort query string false "Sort by timestamp or percentage"
// @Success 200 {object} response.Envelope
// @Router /admin/results [get]
func (h *ResultHandler) List(c *gin.Context) {
	filter := models.ResultFilter{
		ClassName: strings.TrimSpace(c.Query("class")),
		Subject:   strings.TrimSpace(c.Query("subject")),
		Sort:      strings.TrimSpace(c.Query("sort")),
	}

	results, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Delete godoc
// @Summary Delete a published result
// @Tags Results
// @Produce json
// @Param rollNumber path int true "Roll number"
// @Success 204
// @Router /admin/results/{rollNumber} [delete]
func (h *ResultHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	roll, err := rollNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.results.Delete(c.Request.Context(), roll, claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func rollNumberParam(c *gin.Context) (int64, error) {
	roll, err := strconv.ParseInt(c.Param("rollNumber"), 10, 64)
	if err != nil || roll <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "roll number must be a positive number")
	}
	return roll, nil
}
