package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CouponHandler struct {
	couponCollection *mongo.Collection
}

type CreateCouponRequest struct {
	Code           string    `json:"code,omitempty" validate:"omitempty,min=3,max=32"`
	Type           string    `json:"type" validate:"required,oneof=percentage fixed"`
	Value          float64   `json:"value" validate:"required,gt=0"`
	MinOrderAmount float64   `json:"minOrderAmount" validate:"gte=0"`
	MaxUses        int       `json:"maxUses" validate:"gte=0"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidUntil     time.Time `json:"validUntil" validate:"required"`
	Active         *bool     `json:"active,omitempty"`
}

type UpdateCouponRequest struct {
	Type           string     `json:"type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	Value          *float64   `json:"value,omitempty" validate:"omitempty,gt=0"`
	MinOrderAmount *float64   `json:"minOrderAmount,omitempty" validate:"omitempty,gte=0"`
	MaxUses        *int       `json:"maxUses,omitempty" validate:"omitempty,gte=0"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
	Active         *bool      `json:"active,omitempty"`
}

type ValidateCouponRequest struct {
	Code   string  `json:"code" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func NewCouponHandler(couponCollection *mongo.Collection) *CouponHandler {
	return &CouponHandler{couponCollection: couponCollection}
}

// generateCouponCode produces a random uppercase code like "SAVE-3F9A2C1B".
func generateCouponCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SAVE-" + strings.ToUpper(id[:8])
}

func (h *CouponHandler) GetCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if active := c.Query("active"); active != "" {
		filter["active"] = active == "true"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.couponCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting coupons",
		})
		return
	}

	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.couponCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching coupons",
		})
		return
	}
	defer cursor.Close(ctx)

	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding coupons",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(coupons),
		"total":      total,
		"totalPages": totalPages(total, limit),
		"data":       coupons,
	})
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
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
	if req.Type == models.CouponTypePercentage && req.Value > 100 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Percentage value cannot exceed 100",
		})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = generateCouponCode()
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	coupon := models.Coupon{
		Code:           code,
		Type:           req.Type,
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		UsedCount:      0,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.couponCollection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A coupon with this code already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating coupon",
		})
		return
	}
	coupon.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    coupon,
	})
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	var req UpdateCouponRequest
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
	if req.Type != "" {
		update["type"] = req.Type
	}
	if req.Value != nil {
		update["value"] = *req.Value
	}
	if req.MinOrderAmount != nil {
		update["min_order_amount"] = *req.MinOrderAmount
	}
	if req.MaxUses != nil {
		update["max_uses"] = *req.MaxUses
	}
	if req.ValidFrom != nil {
		update["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		update["valid_until"] = *req.ValidUntil
	}
	if req.Active != nil {
		update["active"] = *req.Active
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var coupon models.Coupon
	err = h.couponCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": couponID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Coupon not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    coupon,
	})
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.couponCollection.DeleteOne(ctx, bson.M{"_id": couponID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting coupon",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Coupon not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Coupon deleted",
	})
}

// ValidateCoupon checks a code against an order amount and returns the
// discount it would produce. Public endpoint used at checkout.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var coupon models.Coupon
	err := h.couponCollection.FindOne(ctx, bson.M{
		"code": strings.ToUpper(strings.TrimSpace(req.Code)),
	}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Coupon not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching coupon",
		})
		return
	}

	if err := coupon.Validate(time.Now(), req.Amount); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"valid":  false,
				"reason": err.Error(),
			},
		})
		return
	}

	discount := coupon.DiscountFor(req.Amount)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"valid":    true,
			"code":     coupon.Code,
			"type":     coupon.Type,
			"value":    coupon.Value,
			"discount": discount,
			"total":    req.Amount - discount,
		},
	})
}
