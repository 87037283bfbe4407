package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bssic/school-portal-api/internal/service"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
	"github.com/bssic/school-portal-api/pkg/response"
)

// AdminHandler exposes admin roster and system maintenance endpoints.
type AdminHandler struct {
	admins *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List admin accounts
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Add godoc
// @Summary Grant admin access
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body service.AddAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/admins [post]
func (h *AdminHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AddAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	user, err := h.admins.Add(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Remove godoc
// @Summary Revoke admin access
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /admin/admins/{id} [delete]
func (h *AdminHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.admins.Remove(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResetSystem godoc
// @Summary Wipe all applications, results and contact submissions
// @Tags Admins
// @Produce json
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /admin/system/reset [post]
func (h *AdminHandler) ResetSystem(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.admins.ResetSystem(c.Request.Context(), claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
