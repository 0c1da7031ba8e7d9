// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	logrus.WithField("database", cfg.DatabaseName).Info("Connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	logrus.Info("Disconnected from MongoDB")
	return nil
}

// CreateIndexes creates the indexes for all collections.
// NOTE: bson.D is used instead of a map to preserve key order in compound indexes.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	orderCollection := m.Database.Collection("orders")
	orderIndexes := []mongo.IndexModel{
		{
			// Compound index for the status filter on the orders table
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "service_type", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "social_username", Value: 1}},
		},
	}
	if _, err := orderCollection.Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	serviceCollection := m.Database.Collection("services")
	serviceIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "active", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "popular", Value: 1}},
		},
	}
	if _, err := serviceCollection.Indexes().CreateMany(ctx, serviceIndexes); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}

	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			// Backs the unread-count query
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}
	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	preferencesCollection := m.Database.Collection("notification_preferences")
	preferencesIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := preferencesCollection.Indexes().CreateMany(ctx, preferencesIndexes); err != nil {
		return fmt.Errorf("failed to create notification preference indexes: %w", err)
	}

	deviceTokenCollection := m.Database.Collection("device_tokens")
	deviceTokenIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "fcm_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := deviceTokenCollection.Indexes().CreateMany(ctx, deviceTokenIndexes); err != nil {
		return fmt.Errorf("failed to create device token indexes: %w", err)
	}

	blogPostCollection := m.Database.Collection("blog_posts")
	blogPostIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "category_id", Value: 1},
				{Key: "published", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := blogPostCollection.Indexes().CreateMany(ctx, blogPostIndexes); err != nil {
		return fmt.Errorf("failed to create blog post indexes: %w", err)
	}

	categoryCollection := m.Database.Collection("categories")
	categoryIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := categoryCollection.Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}

	couponCollection := m.Database.Collection("coupons")
	couponIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "valid_until", Value: 1},
			},
		},
	}
	if _, err := couponCollection.Indexes().CreateMany(ctx, couponIndexes); err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}

	reviewCollection := m.Database.Collection("reviews")
	reviewIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "approved", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "rating", Value: 1}},
		},
	}
	if _, err := reviewCollection.Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	seoCollection := m.Database.Collection("seo_settings")
	seoIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "page_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := seoCollection.Indexes().CreateMany(ctx, seoIndexes); err != nil {
		return fmt.Errorf("failed to create SEO settings indexes: %w", err)
	}

	logrus.Info("Indexes created for all collections")
	return nil
}
