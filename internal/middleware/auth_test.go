package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/highgoal215/socialsale-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func authTestRouter(jwtManager *auth.JWTManager, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(jwtManager))
	if admin {
		router.Use(AdminMiddleware())
	}
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	assert := assert.New(t)

	router := authTestRouter(auth.NewJWTManager("secret", time.Hour), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	assert := assert.New(t)

	router := authTestRouter(auth.NewJWTManager("secret", time.Hour), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Token abc123")
	router.ServeHTTP(w, req)

	assert.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	assert := assert.New(t)

	jwtManager := auth.NewJWTManager("secret", time.Hour)
	router := authTestRouter(jwtManager, false)

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "user@example.com", false)
	assert.NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)
}

func TestAdminMiddlewareRejectsNonAdmin(t *testing.T) {
	assert := assert.New(t)

	jwtManager := auth.NewJWTManager("secret", time.Hour)
	router := authTestRouter(jwtManager, true)

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "user@example.com", false)
	assert.NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(http.StatusForbidden, w.Code)
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	assert := assert.New(t)

	jwtManager := auth.NewJWTManager("secret", time.Hour)
	router := authTestRouter(jwtManager, true)

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "admin@example.com", true)
	assert.NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)
}
