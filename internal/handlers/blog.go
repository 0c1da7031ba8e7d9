package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"
	"github.com/highgoal215/socialsale-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BlogHandler struct {
	postCollection     *mongo.Collection
	categoryCollection *mongo.Collection
}

type CreateBlogPostRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Slug       string   `json:"slug,omitempty" validate:"omitempty,max=200"`
	Excerpt    string   `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"coverImage,omitempty"`
	CategoryID string   `json:"categoryId,omitempty"`
	Author     string   `json:"author,omitempty" validate:"omitempty,max=100"`
	Tags       []string `json:"tags,omitempty"`
	Published  bool     `json:"published"`
}

type UpdateBlogPostRequest struct {
	Title      string   `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Slug       string   `json:"slug,omitempty" validate:"omitempty,max=200"`
	Excerpt    *string  `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Content    string   `json:"content,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
	CategoryID string   `json:"categoryId,omitempty"`
	Author     string   `json:"author,omitempty" validate:"omitempty,max=100"`
	Tags       []string `json:"tags,omitempty"`
	Published  *bool    `json:"published,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL slug from a title.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func NewBlogHandler(postCollection, categoryCollection *mongo.Collection) *BlogHandler {
	return &BlogHandler{
		postCollection:     postCollection,
		categoryCollection: categoryCollection,
	}
}

func (h *BlogHandler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if published := c.Query("published"); published != "" {
		filter["published"] = published == "true"
	}
	if category := c.Query("category"); category != "" {
		if categoryID, err := primitive.ObjectIDFromHex(category); err == nil {
			filter["category_id"] = categoryID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.postCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting blog posts",
		})
		return
	}

	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.postCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching blog posts",
		})
		return
	}
	defer cursor.Close(ctx)

	posts := []models.BlogPost{}
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding blog posts",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(posts),
		"total":      total,
		"totalPages": totalPages(total, limit),
		"page":       page,
		"data":       posts,
	})
}

// GetPost accepts either an object id or a slug.
func (h *BlogHandler) GetPost(c *gin.Context) {
	key := c.Param("id")

	filter := bson.M{"slug": key}
	if postID, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": postID}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.BlogPost
	err := h.postCollection.FindOne(ctx, filter).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Blog post not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching blog post",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    post,
	})
}

func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req CreateBlogPostRequest
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

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}

	now := time.Now()
	post := models.BlogPost{
		Title:      req.Title,
		Slug:       slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Author:     req.Author,
		Tags:       req.Tags,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Published {
		post.PublishedAt = &now
	}
	if req.CategoryID != "" {
		if categoryID, err := primitive.ObjectIDFromHex(req.CategoryID); err == nil {
			post.CategoryID = categoryID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.postCollection.InsertOne(ctx, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A post with this slug already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating blog post",
		})
		return
	}
	post.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    post,
	})
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid post ID",
		})
		return
	}

	var req UpdateBlogPostRequest
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
	update := bson.M{"updated_at": now}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Slug != "" {
		update["slug"] = slugify(req.Slug)
	}
	if req.Excerpt != nil {
		update["excerpt"] = *req.Excerpt
	}
	if req.Content != "" {
		update["content"] = req.Content
	}
	if req.CoverImage != nil {
		update["cover_image"] = *req.CoverImage
	}
	if req.Author != "" {
		update["author"] = req.Author
	}
	if req.Tags != nil {
		update["tags"] = req.Tags
	}
	if req.CategoryID != "" {
		if categoryID, err := primitive.ObjectIDFromHex(req.CategoryID); err == nil {
			update["category_id"] = categoryID
		}
	}
	if req.Published != nil {
		update["published"] = *req.Published
		if *req.Published {
			update["published_at"] = now
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.BlogPost
	err = h.postCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": postID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Blog post not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating blog post",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    post,
	})
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid post ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.postCollection.DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting blog post",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Blog post not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blog post deleted",
	})
}

// Categories

func (h *BlogHandler) GetCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := h.categoryCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching categories",
		})
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(categories),
		"data":    categories,
	})
}

func (h *BlogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
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

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	now := time.Now()
	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.categoryCollection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A category with this slug already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating category",
		})
		return
	}
	category.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

func (h *BlogHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid category ID",
		})
		return
	}

	var req CategoryRequest
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
		"name":        req.Name,
		"description": req.Description,
		"updated_at":  time.Now(),
	}
	if req.Slug != "" {
		update["slug"] = slugify(req.Slug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var category models.Category
	err = h.categoryCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": categoryID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&category)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Category not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating category",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

func (h *BlogHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid category ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.categoryCollection.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting category",
		})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Category not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted",
	})
}
