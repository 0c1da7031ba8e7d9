package services

import (
	"context"
	"fmt"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PreferencesService owns the notification_preferences collection.
// Preferences are materialized with server defaults on first access, so
// callers always receive a complete document.
type PreferencesService struct {
	collection *mongo.Collection
}

func NewPreferencesService(collection *mongo.Collection) *PreferencesService {
	return &PreferencesService{collection: collection}
}

// GetOrCreate returns the user's preferences, inserting the default set on
// first access.
func (ps *PreferencesService) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := ps.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prefs)
	if err == nil {
		return &prefs, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	defaults := models.DefaultPreferences(userID)
	result, err := ps.collection.InsertOne(ctx, defaults)
	if err != nil {
		// A concurrent first access may have inserted already; re-read.
		if mongo.IsDuplicateKeyError(err) {
			if rerr := ps.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prefs); rerr == nil {
				return &prefs, nil
			}
		}
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}

	defaults.ID = result.InsertedID.(primitive.ObjectID)
	return defaults, nil
}

// Update replaces the user's preferences with the given snapshot and returns
// the stored document. Free-form fields are normalized first; the response is
// authoritative for the client.
func (ps *PreferencesService) Update(ctx context.Context, userID primitive.ObjectID, prefs *models.NotificationPreferences) (*models.NotificationPreferences, error) {
	prefs.UserID = userID
	prefs.Normalize()
	prefs.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"order_updates":     prefs.OrderUpdates,
			"payments":          prefs.Payments,
			"support":           prefs.Support,
			"promotions":        prefs.Promotions,
			"system":            prefs.System,
			"in_app":            prefs.InApp,
			"email":             prefs.Email,
			"push":              prefs.Push,
			"frequency":         prefs.Frequency,
			"quiet_hours":       prefs.QuietHours,
			"email_preferences": prefs.EmailPreferences,
			"updated_at":        prefs.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": prefs.UpdatedAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored models.NotificationPreferences
	if err := ps.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return &stored, nil
}

// Reset deletes the user's preferences and re-creates the default set, so the
// client's notion of "default" always matches the server's.
func (ps *PreferencesService) Reset(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreferences, error) {
	if _, err := ps.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return nil, fmt.Errorf("failed to reset preferences: %w", err)
	}
	return ps.GetOrCreate(ctx, userID)
}
