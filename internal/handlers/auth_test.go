package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/highgoal215/socialsale-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"
)

func loginRouter(mt *mtest.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(mt.Coll, auth.NewJWTManager("test-secret", time.Hour))
	router := gin.New()
	router.POST("/auth/login", h.Login)
	return router
}

func userDoc(t *testing.T, password string, blocked bool) bson.D {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "email", Value: "admin@example.com"},
		{Key: "username", Value: "admin"},
		{Key: "password_hash", Value: string(hash)},
		{Key: "is_admin", Value: true},
		{Key: "is_blocked", Value: blocked},
	}
}

func postLogin(router *gin.Engine, password string) *httptest.ResponseRecorder {
	body := `{"email":"admin@example.com","password":"` + password + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("valid credentials return a token", func(mt *mtest.T) {
		assert := assert.New(t)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.users", mtest.FirstBatch, userDoc(t, "correct-password", false)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		w := postLogin(loginRouter(mt), "correct-password")
		assert.Equal(http.StatusOK, w.Code)
		assert.Contains(w.Body.String(), `"token"`)
	})

	mt.Run("wrong password is a generic 401", func(mt *mtest.T) {
		assert := assert.New(t)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.users", mtest.FirstBatch, userDoc(t, "correct-password", false)),
		)

		w := postLogin(loginRouter(mt), "wrong-password")
		assert.Equal(http.StatusUnauthorized, w.Code)
		assert.Contains(w.Body.String(), "Invalid email or password")
	})

	mt.Run("wrong password never discloses blocked state", func(mt *mtest.T) {
		assert := assert.New(t)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.users", mtest.FirstBatch, userDoc(t, "correct-password", true)),
		)

		w := postLogin(loginRouter(mt), "wrong-password")
		assert.Equal(http.StatusUnauthorized, w.Code)
		assert.NotContains(w.Body.String(), "blocked")
	})

	mt.Run("valid credentials on a blocked account get 403", func(mt *mtest.T) {
		assert := assert.New(t)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.users", mtest.FirstBatch, userDoc(t, "correct-password", true)),
		)

		w := postLogin(loginRouter(mt), "correct-password")
		assert.Equal(http.StatusForbidden, w.Code)
		assert.Contains(w.Body.String(), "Account is blocked")
	})
}
