package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewHandler struct {
	reviewCollection *mongo.Collection
}

type CreateReviewRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=150"`
	Content     string `json:"content" validate:"required,min=5,max=2000"`
	ServiceType string `json:"serviceType,omitempty" validate:"omitempty,oneof=followers likes views comments"`
}

type UpdateReviewRequest struct {
	Rating   *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=150"`
	Content  *string `json:"content,omitempty" validate:"omitempty,min=5,max=2000"`
	Approved *bool   `json:"approved,omitempty"`
}

func NewReviewHandler(reviewCollection *mongo.Collection) *ReviewHandler {
	return &ReviewHandler{reviewCollection: reviewCollection}
}

func (h *ReviewHandler) GetReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if approved := c.Query("approved"); approved != "" {
		filter["approved"] = approved == "true"
	}
	if rating := c.Query("rating"); rating != "" {
		if r, err := strconv.Atoi(rating); err == nil && r >= 1 && r <= 5 {
			filter["rating"] = r
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.reviewCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting reviews",
		})
		return
	}

	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.reviewCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching reviews",
		})
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(reviews),
		"total":      total,
		"totalPages": totalPages(total, limit),
		"page":       page,
		"data":       reviews,
	})
}

// CreateReview is public: reviews come from the storefront and wait for
// moderation before being shown.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
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

	now := time.Now()
	review := models.Review{
		Name:        req.Name,
		Email:       req.Email,
		Rating:      req.Rating,
		Title:       req.Title,
		Content:     req.Content,
		ServiceType: req.ServiceType,
		Approved:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.reviewCollection.InsertOne(ctx, review)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating review",
		})
		return
	}
	review.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid review ID",
		})
		return
	}

	var req UpdateReviewRequest
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

	update := bson.M{"updated_at": time.Now()}
	if req.Rating != nil {
		update["rating"] = *req.Rating
	}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Content != nil {
		update["content"] = *req.Content
	}
	if req.Approved != nil {
		update["approved"] = *req.Approved
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var review models.Review
	err = h.reviewCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reviewID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Review not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating review",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    review,
	})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid review ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.reviewCollection.DeleteOne(ctx, bson.M{"_id": reviewID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting review",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Review not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review deleted",
	})
}
