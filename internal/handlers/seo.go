package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SEOHandler struct {
	seoCollection *mongo.Collection
}

type UpsertSEORequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"required,max=500"`
	Keywords       []string `json:"keywords,omitempty"`
	OGTitle        string   `json:"ogTitle,omitempty" validate:"omitempty,max=200"`
	OGDescription  string   `json:"ogDescription,omitempty" validate:"omitempty,max=500"`
	OGImage        string   `json:"ogImage,omitempty"`
	CanonicalURL   string   `json:"canonicalUrl,omitempty" validate:"omitempty,url"`
	RobotsNoIndex  bool     `json:"robotsNoIndex"`
	StructuredData string   `json:"structuredData,omitempty"`
}

func NewSEOHandler(seoCollection *mongo.Collection) *SEOHandler {
	return &SEOHandler{seoCollection: seoCollection}
}

func (h *SEOHandler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := h.seoCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "page_id", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching SEO settings",
		})
		return
	}
	defer cursor.Close(ctx)

	settings := []models.SEOSetting{}
	if err := cursor.All(ctx, &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding SEO settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(settings),
		"data":    settings,
	})
}

func (h *SEOHandler) GetSetting(c *gin.Context) {
	pageID := c.Param("pageId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var setting models.SEOSetting
	err := h.seoCollection.FindOne(ctx, bson.M{"page_id": pageID}).Decode(&setting)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "SEO settings not found for this page",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching SEO settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    setting,
	})
}

// UpsertSetting creates or replaces the SEO settings for one page.
func (h *SEOHandler) UpsertSetting(c *gin.Context) {
	pageID := c.Param("pageId")

	var req UpsertSEORequest
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

	update := bson.M{
		"$set": bson.M{
			"title":           req.Title,
			"description":     req.Description,
			"keywords":        req.Keywords,
			"og_title":        req.OGTitle,
			"og_description":  req.OGDescription,
			"og_image":        req.OGImage,
			"canonical_url":   req.CanonicalURL,
			"robots_no_index": req.RobotsNoIndex,
			"structured_data": req.StructuredData,
			"updated_at":      time.Now(),
		},
		"$setOnInsert": bson.M{
			"page_id": pageID,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var setting models.SEOSetting
	err := h.seoCollection.FindOneAndUpdate(
		ctx,
		bson.M{"page_id": pageID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&setting)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error saving SEO settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    setting,
	})
}
