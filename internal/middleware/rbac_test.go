package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bssic/school-portal-api/internal/models"
)

func TestRequireRolesNoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard/stats", nil)

	RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesWrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard/stats", nil)
	c.Set(ContextUserKey, "not-claims")

	RequireRoles(models.RoleSuperAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/system/reset", nil)
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})

	RequireRoles(models.RoleSuperAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAdminBlockedFromSuperAdminRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handlerRan := false

	r := gin.New()
	admin := r.Group("/admin", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "plain-admin", Role: models.RoleAdmin})
	}, RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	admin.DELETE("/admins/:id", RequireRoles(models.RoleSuperAdmin), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/admins/victim", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, handlerRan)
}

func TestRequireRolesAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard/stats", nil)
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleSuperAdmin})

	RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, rec.Code)
}
