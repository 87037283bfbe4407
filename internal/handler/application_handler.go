package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bssic/school-portal-api/internal/models"
	"github.com/bssic/school-portal-api/internal/service"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/response"
)

// ApplicationHandler exposes admission application endpoints.
type ApplicationHandler struct {
	applications *service.ApplicationService
	documents    *service.DocumentService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService, documents *service.DocumentService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, documents: documents}
}

// Submit godoc
// @Summary Submit an admission application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admissions [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// List godoc
// @Summary List admission applications
// @Tags Admissions
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search by student name"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := applicationFilterFromQuery(c)
	apps, err := h.applications.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Get godoc
// @Summary Get application detail
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/admissions/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"application": app}
	if h.documents != nil {
		payload["documents"] = h.documents.SignURLs(app.DocumentURLs)
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// UpdateStatus godoc
// @Summary Approve or reject an application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /admin/admissions/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.applications.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateField godoc
// @Summary Edit one application field
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateFieldRequest true "Field payload"
// @Success 204
// @Router /admin/admissions/{id}/field [patch]
func (h *ApplicationHandler) UpdateField(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.applications.UpdateField(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateDocuments godoc
// @Summary Replace an application's document list
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateDocumentsRequest true "Documents payload"
// @Success 204
// @Router /admin/admissions/{id}/documents [put]
func (h *ApplicationHandler) UpdateDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.applications.UpdateDocuments(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an application
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /admin/admissions/{id} [delete]
func (h *ApplicationHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.applications.Delete(c.Request.Context(), c.Param("id"), claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export applications as CSV
// @Tags Admissions
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Param search query string false "Search by student name"
// @Success 200 {string} string "CSV data"
// @Router /admin/admissions/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	filter := applicationFilterFromQuery(c)
	data, err := h.applications.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

func applicationFilterFromQuery(c *gin.Context) models.ApplicationFilter {
	var filter models.ApplicationFilter
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s := models.ApplicationStatus(status)
		filter.Status = &s
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	return filter
}
