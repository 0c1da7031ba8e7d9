// internal/handlers/services.go - pricing catalog
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

type ServiceHandler struct {
	serviceCollection *mongo.Collection
}

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Type        string  `json:"type" validate:"required,oneof=followers likes views comments"`
	Quality     string  `json:"quality" validate:"required,oneof=regular premium"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Discount    float64 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Active      *bool   `json:"active,omitempty"`
	Popular     bool    `json:"popular"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=500"`
}

type UpdateServiceRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Quality     string   `json:"quality,omitempty" validate:"omitempty,oneof=regular premium"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount    *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Active      *bool    `json:"active,omitempty"`
	Popular     *bool    `json:"popular,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
}

func NewServiceHandler(serviceCollection *mongo.Collection) *ServiceHandler {
	return &ServiceHandler{serviceCollection: serviceCollection}
}

func (h *ServiceHandler) GetServices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{}
	if serviceType := c.Query("type"); serviceType != "" && serviceType != "all" {
		filter["type"] = serviceType
	}
	if active := c.Query("active"); active != "" {
		filter["active"] = active == "true"
	}
	if popular := c.Query("popular"); popular != "" {
		filter["popular"] = popular == "true"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.serviceCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting services",
		})
		return
	}

	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{
			{Key: "type", Value: 1},
			{Key: "quantity", Value: 1},
		})

	cursor, err := h.serviceCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching services",
		})
		return
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding services",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(services),
		"total":      total,
		"totalPages": totalPages(total, limit),
		"page":       page,
		"data":       services,
	})
}

func (h *ServiceHandler) GetService(c *gin.Context) {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid service ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var service models.Service
	err = h.serviceCollection.FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
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

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	service := models.Service{
		Name:        req.Name,
		Type:        req.Type,
		Quality:     req.Quality,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Discount:    req.Discount,
		Active:      active,
		Popular:     req.Popular,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.serviceCollection.InsertOne(ctx, service)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating service",
		})
		return
	}
	service.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid service ID",
		})
		return
	}

	var req UpdateServiceRequest
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
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Quality != "" {
		update["quality"] = req.Quality
	}
	if req.Quantity != nil {
		update["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		update["price"] = *req.Price
	}
	if req.Discount != nil {
		update["discount"] = *req.Discount
	}
	if req.Active != nil {
		update["active"] = *req.Active
	}
	if req.Popular != nil {
		update["popular"] = *req.Popular
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var service models.Service
	err = h.serviceCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": serviceID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&service)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

func (h *ServiceHandler) DeleteService(c *gin.Context) {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid service ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.serviceCollection.DeleteOne(ctx, bson.M{"_id": serviceID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting service",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service deleted",
	})
}
