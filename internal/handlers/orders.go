// internal/handlers/orders.go
package handlers

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/internal/services"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderHandler struct {
	orderCollection     *mongo.Collection
	serviceCollection   *mongo.Collection
	couponCollection    *mongo.Collection
	notificationService *services.NotificationService
	supplierService     *services.SupplierService
}

type OrderFilters struct {
	Type      string `form:"type"`
	Status    string `form:"status"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type CreateOrderRequest struct {
	SocialUsername string `json:"socialUsername" validate:"required,min=1,max=100"`
	PostURL        string `json:"postUrl" validate:"omitempty,url"`
	ServiceID      string `json:"serviceId" validate:"required"`
	CouponCode     string `json:"couponCode" validate:"omitempty,max=50"`
	UserID         string `json:"userId" validate:"omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func NewOrderHandler(
	orderCollection, serviceCollection, couponCollection *mongo.Collection,
	notificationService *services.NotificationService,
	supplierService *services.SupplierService,
) *OrderHandler {
	return &OrderHandler{
		orderCollection:     orderCollection,
		serviceCollection:   serviceCollection,
		couponCollection:    couponCollection,
		notificationService: notificationService,
		supplierService:     supplierService,
	}
}

// buildOrderFilter composes the list filters by logical AND. The status
// filter accepts "all" (no filter) and normalizes the legacy "rejected"
// spelling; the text search matches order id (exact, when it parses as an
// id) or social username (case-insensitive substring).
func buildOrderFilter(f OrderFilters) bson.M {
	filter := bson.M{}

	if f.Type != "" && f.Type != "all" {
		filter["service_type"] = f.Type
	}

	if f.Status != "" && f.Status != "all" {
		if status, ok := models.NormalizeOrderStatus(f.Status); ok {
			filter["status"] = status
		} else {
			filter["status"] = f.Status // unknown status matches no documents
		}
	}

	if f.Search != "" {
		or := []bson.M{
			{"social_username": bson.M{
				"$regex":   regexp.QuoteMeta(f.Search),
				"$options": "i",
			}},
		}
		if id, err := primitive.ObjectIDFromHex(f.Search); err == nil {
			or = append(or, bson.M{"_id": id})
		}
		filter["$or"] = or
	}

	return filter
}

// orderSortColumns whitelists sortable fields; anything else falls back to
// created_at.
var orderSortColumns = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"price":           true,
	"quantity":        true,
	"status":          true,
	"service_type":    true,
	"social_username": true,
}

func buildOrderSort(sortBy, sortOrder string) bson.D {
	if !orderSortColumns[sortBy] {
		sortBy = "created_at"
	}
	direction := -1 // newest/largest first by default
	if sortOrder == "asc" {
		direction = 1
	}
	return bson.D{{Key: sortBy, Value: direction}}
}

// notifiableStatus reports whether a status is worth telling the customer
// about. Intermediate bookkeeping states (pending, in_progress, partial)
// stay silent.
func notifiableStatus(status string) bool {
	switch status {
	case models.OrderStatusProcessing, models.OrderStatusCompleted, models.OrderStatusCanceled:
		return true
	}
	return false
}

// couponClaimFilter matches a coupon only while it still has uses left, so
// an $inc guarded by it can never push used_count past max_uses. Zero
// max_uses means unlimited.
func couponClaimFilter(couponID primitive.ObjectID) bson.M {
	return bson.M{
		"_id": couponID,
		"$or": []bson.M{
			{"max_uses": 0},
			{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}
}

// totalPages computes the page count from the filtered total.
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters OrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 10
	}

	filter := buildOrderFilter(filters)
	sort := buildOrderSort(filters.SortBy, filters.SortOrder)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.orderCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting orders",
		})
		return
	}

	skip := (filters.Page - 1) * filters.Limit
	findOptions := options.Find().
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(skip)).
		SetSort(sort)

	cursor, err := h.orderCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching orders",
		})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(orders),
		"total":      total,
		"totalPages": totalPages(total, filters.Limit),
		"page":       filters.Page,
		"data":       orders,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = h.orderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
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

	serviceID, err := primitive.ObjectIDFromHex(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid service ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var service models.Service
	err = h.serviceCollection.FindOne(ctx, bson.M{"_id": serviceID, "active": true}).Decode(&service)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found or inactive",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching service",
		})
		return
	}

	price := service.EffectivePrice()

	var claimedCouponID primitive.ObjectID
	if req.CouponCode != "" {
		var coupon models.Coupon
		err := h.couponCollection.FindOne(ctx, bson.M{"code": req.CouponCode}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{
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
		if err := coupon.Validate(time.Now(), price); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		// Claim one use atomically. The filter re-checks the usage limit
		// server-side so concurrent checkouts cannot push used_count past
		// max_uses; a zero match means another request took the last use.
		result, err := h.couponCollection.UpdateOne(ctx, couponClaimFilter(coupon.ID), bson.M{
			"$inc": bson.M{"used_count": 1},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error applying coupon",
			})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrCouponExhausted.Error(),
			})
			return
		}

		claimedCouponID = coupon.ID
		price -= coupon.DiscountFor(price)
	}

	now := time.Now()
	order := models.Order{
		SocialUsername: req.SocialUsername,
		PostURL:        req.PostURL,
		ServiceID:      service.ID,
		ServiceType:    service.Type,
		Quality:        service.Quality,
		Quantity:       service.Quantity,
		Price:          price,
		Status:         models.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.UserID != "" {
		if userID, err := primitive.ObjectIDFromHex(req.UserID); err == nil {
			order.UserID = userID
		}
	}

	// Forward to the supplier when configured. A supplier failure is not
	// fatal: the order stays pending and can be re-submitted.
	if h.supplierService.Enabled() {
		supplierOrderID, err := h.supplierService.PlaceOrder(ctx, &order)
		if err != nil {
			logrus.WithError(err).Warn("Supplier order placement failed")
		} else {
			order.SupplierOrderID = supplierOrderID
			order.Status = models.OrderStatusProcessing
		}
	}

	result, err := h.orderCollection.InsertOne(ctx, order)
	if err != nil {
		// Release the claimed coupon use so a failed checkout does not
		// consume it.
		if !claimedCouponID.IsZero() {
			if _, releaseErr := h.couponCollection.UpdateOne(ctx, bson.M{"_id": claimedCouponID}, bson.M{
				"$inc": bson.M{"used_count": -1},
			}); releaseErr != nil {
				logrus.WithError(releaseErr).WithField("coupon_id", claimedCouponID.Hex()).
					Warn("Failed to release coupon use")
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating order",
		})
		return
	}
	order.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus changes the order status and notifies the order's owner
// with an order_update notification.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	status, ok := models.NormalizeOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order status",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = h.orderCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating order status",
		})
		return
	}

	if !order.UserID.IsZero() && notifiableStatus(order.Status) {
		_, err := h.notificationService.CreateForUser(ctx, order.UserID, services.CreateNotificationInput{
			Type:    models.NotificationTypeOrderUpdate,
			Title:   "Order status updated",
			Message: "Your " + order.ServiceType + " order is now " + order.Status + ".",
			Link:    "/orders/" + order.ID.Hex(),
		})
		if err != nil {
			logrus.WithError(err).WithField("order_id", order.ID.Hex()).Warn("Order notification failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.orderCollection.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting order",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// GetSupplierStatus checks the fulfillment provider for the current state of
// a forwarded order.
func (h *OrderHandler) GetSupplierStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var order models.Order
	err = h.orderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching order",
		})
		return
	}

	if order.SupplierOrderID == "" {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order has not been forwarded to the supplier",
		})
		return
	}

	status, err := h.supplierService.GetOrderStatus(ctx, order.SupplierOrderID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Supplier status lookup failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orderId":         order.ID.Hex(),
			"supplierOrderId": order.SupplierOrderID,
			"supplierStatus":  status,
		},
	})
}
