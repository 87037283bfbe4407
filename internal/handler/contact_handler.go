package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bssic/school-portal-api/internal/service"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/response"
)

// ContactHandler exposes contact form endpoints.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit godoc
// @Summary Submit a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.SubmitContactRequest true "Contact payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	submission, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List contact submissions
// @Tags Contact
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	submissions, err := h.contacts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}
