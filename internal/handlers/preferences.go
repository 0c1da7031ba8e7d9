package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/internal/services"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PreferencesHandler struct {
	preferencesService *services.PreferencesService
}

func NewPreferencesHandler(preferencesService *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
	}
}

// GetPreferences returns the caller's preferences, creating the default set
// on first access so the client always receives a full object.
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefs, err := h.preferencesService.GetOrCreate(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error fetching preferences",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prefs,
	})
}

// UpdatePreferences takes a full preferences snapshot (not a diff) and
// returns the stored document, which is authoritative; the server may have
// normalized values the client sent.
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	var req models.NotificationPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": err.Error(),
		})
		return
	}

	userID := c.MustGet("user_id").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := h.preferencesService.Update(ctx, userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error updating preferences",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification preferences updated",
		"data":    stored,
	})
}

// ResetPreferences discards the caller's preferences and returns the
// server-defined default set.
func (h *PreferencesHandler) ResetPreferences(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefs, err := h.preferencesService.Reset(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error resetting preferences",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification preferences reset to defaults",
		"data":    prefs,
	})
}
