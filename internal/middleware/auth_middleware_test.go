package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func setupRouter(policy authz.Policy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Authenticate(testSecret))
	router.GET("/guarded", middleware.RequireRoles(policy), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": middleware.CurrentUserID(c)})
	})
	router.GET("/session-only", middleware.RequireAuthenticated(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func tokenFor(t *testing.T, id uint, roles ...authz.RoleName) string {
	t.Helper()
	user := &models.User{ID: id, Email: "user@example.com", Username: "user"}
	for _, r := range roles {
		user.Roles = append(user.Roles, models.Role{Name: r})
	}
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAdmitsMatchingRole(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin, authz.RoleModerator))

	w := doRequest(router, "/guarded", tokenFor(t, 7, authz.RoleModerator))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireRolesAnonymousGets401(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	w := doRequest(router, "/guarded?tab=users", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// The login redirect must preserve where the user was headed
	assert.Contains(t, w.Body.String(), "%2Fguarded%3Ftab%3Dusers")
}

func TestRequireRolesWrongRoleGets403(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	w := doRequest(router, "/guarded", tokenFor(t, 7, authz.RoleCustomer))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesExpiredTokenIsAnonymous(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	user := &models.User{ID: 7, Email: "user@example.com", Username: "user",
		Roles: []models.Role{{Name: authz.RoleAdmin}}}
	expired, err := utils.GenerateToken(user, testSecret, -time.Hour)
	require.NoError(t, err)

	w := doRequest(router, "/guarded", expired)

	// Expired credentials mean not-logged-in, not forbidden
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesTamperedTokenIsAnonymous(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	w := doRequest(router, "/guarded", tokenFor(t, 7, authz.RoleAdmin)+"x")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthenticatedAdmitsAnyRole(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	w := doRequest(router, "/session-only", tokenFor(t, 3, authz.RoleCustomer))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthenticatedRejectsAnonymous(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	w := doRequest(router, "/session-only", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateReadsBearerHeader(t *testing.T) {
	router := setupRouter(authz.MustPolicy(authz.RoleAdmin))

	req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 9, authz.RoleAdmin))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
