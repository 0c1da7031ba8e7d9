package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndValidateToken(t *testing.T) {
	assert := assert.New(t)

	manager := NewJWTManager("test-secret", time.Hour)
	userID := primitive.NewObjectID()

	token, err := manager.GenerateToken(userID, "admin@example.com", true)
	assert.NoError(err)
	assert.NotEmpty(token)

	claims, err := manager.ValidateToken(token)
	assert.NoError(err)
	assert.Equal(userID, claims.UserID)
	assert.Equal("admin@example.com", claims.Email)
	assert.True(claims.IsAdmin)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	assert := assert.New(t)

	manager := NewJWTManager("test-secret", time.Hour)
	token, err := manager.GenerateToken(primitive.NewObjectID(), "user@example.com", false)
	assert.NoError(err)

	other := NewJWTManager("different-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(err)
}

func TestValidateTokenExpired(t *testing.T) {
	assert := assert.New(t)

	manager := NewJWTManager("test-secret", -time.Minute)
	token, err := manager.GenerateToken(primitive.NewObjectID(), "user@example.com", false)
	assert.NoError(err)

	_, err = manager.ValidateToken(token)
	assert.Error(err)
}

func TestValidateTokenGarbage(t *testing.T) {
	assert := assert.New(t)

	manager := NewJWTManager("test-secret", time.Hour)
	_, err := manager.ValidateToken("not.a.token")
	assert.Error(err)
}
