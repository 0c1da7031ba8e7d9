package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DashboardHandler struct {
	orderCollection  *mongo.Collection
	userCollection   *mongo.Collection
	reviewCollection *mongo.Collection
}

func NewDashboardHandler(orderCollection, userCollection, reviewCollection *mongo.Collection) *DashboardHandler {
	return &DashboardHandler{
		orderCollection:  orderCollection,
		userCollection:   userCollection,
		reviewCollection: reviewCollection,
	}
}

type orderStatusCount struct {
	Status  string  `bson:"_id" json:"status"`
	Count   int64   `bson:"count" json:"count"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

// GetStats returns the headline numbers for the admin dashboard: orders
// grouped by status with revenue, user totals, pending review moderation
// count and the most recent orders.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$price"},
		}}},
	}

	cursor, err := h.orderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error aggregating orders",
		})
		return
	}
	defer cursor.Close(ctx)

	var grouped []orderStatusCount
	if err := cursor.All(ctx, &grouped); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding order stats",
		})
		return
	}

	byStatus := map[string]orderStatusCount{}
	var totalOrders int64
	var totalRevenue float64
	for _, g := range grouped {
		byStatus[g.Status] = g
		totalOrders += g.Count
		if g.Status == models.OrderStatusCompleted || g.Status == models.OrderStatusPartial {
			totalRevenue += g.Revenue
		}
	}

	totalUsers, err := h.userCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting users",
		})
		return
	}
	blockedUsers, err := h.userCollection.CountDocuments(ctx, bson.M{"is_blocked": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting blocked users",
		})
		return
	}

	pendingReviews, err := h.reviewCollection.CountDocuments(ctx, bson.M{"approved": false})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting reviews",
		})
		return
	}

	since := time.Now().AddDate(0, 0, -30)
	recentOrders, err := h.orderCollection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": since},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting recent orders",
		})
		return
	}

	findOptions := options.Find().
		SetLimit(10).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	latestCursor, err := h.orderCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching latest orders",
		})
		return
	}
	defer latestCursor.Close(ctx)

	latest := []models.Order{}
	if err := latestCursor.All(ctx, &latest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding latest orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": gin.H{
				"total":        totalOrders,
				"last30Days":   recentOrders,
				"byStatus":     byStatus,
				"totalRevenue": totalRevenue,
			},
			"users": gin.H{
				"total":   totalUsers,
				"blocked": blockedUsers,
			},
			"reviews": gin.H{
				"pendingApproval": pendingReviews,
			},
			"latestOrders": latest,
		},
	})
}
