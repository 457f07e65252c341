package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodocs/internal/models"
	"autodocs/internal/services"
)

func newRouter(auth services.AuthService, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", AuthMiddleware(auth))
	if len(roles) > 0 {
		g.Use(RequireRoles(roles...))
	}
	g.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt(CtxUserID), "role": c.GetString(CtxRole)})
	})
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService("test-secret", time.Minute, time.Hour)
	token, _, err := auth.IssueAccessToken(&models.User{ID: 7, Email: "a@x.edu", RoleName: "Student"})
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(auth), "").Code)
	})
	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(auth), "not-a-jwt").Code)
	})
	t.Run("foreign secret", func(t *testing.T) {
		other := services.NewAuthService("other-secret", time.Minute, time.Hour)
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(other), token).Code)
	})
	t.Run("valid", func(t *testing.T) {
		w := doGet(newRouter(auth), token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":7,"role":"Student"}`, w.Body.String())
	})
}

func TestRequireRoles(t *testing.T) {
	auth := services.NewAuthService("test-secret", time.Minute, time.Hour)
	student, _, err := auth.IssueAccessToken(&models.User{ID: 1, RoleName: "Student"})
	require.NoError(t, err)
	admin, _, err := auth.IssueAccessToken(&models.User{ID: 2, RoleName: "Admin"})
	require.NoError(t, err)

	r := newRouter(auth, "admin")
	assert.Equal(t, http.StatusForbidden, doGet(r, student).Code)
	assert.Equal(t, http.StatusOK, doGet(r, admin).Code)
}
