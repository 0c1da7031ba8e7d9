package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/config"
	"github.com/highgoal215/socialsale-backend/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// NotificationService owns the notifications collection and enforces the
// delivery rules: per-type toggles gate in-app storage, emailPreferences
// gates the email channel, quiet hours suppress push and email but never
// in-app storage (the dashboard polls, nothing is interrupted).
type NotificationService struct {
	config                 *config.Config
	userCollection         *mongo.Collection
	notificationCollection *mongo.Collection
	deviceTokenCollection  *mongo.Collection
	preferences            *PreferencesService
	email                  *EmailService
	httpClient             *http.Client
}

type CreateNotificationInput struct {
	Type    string
	Title   string
	Message string
	Link    string
}

// ListOptions filter the notification list query.
type ListOptions struct {
	Read  *bool
	Type  string
	Page  int
	Limit int
}

type fcmMessage struct {
	RegistrationIDs []string               `json:"registration_ids,omitempty"`
	Notification    fcmNotification        `json:"notification"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Priority        string                 `json:"priority"`
	TimeToLive      int                    `json:"time_to_live,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Sound string `json:"sound,omitempty"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

type fcmResult struct {
	MessageID      string `json:"message_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

func NewNotificationService(
	cfg *config.Config,
	userCollection, notificationCollection, deviceTokenCollection *mongo.Collection,
	preferences *PreferencesService,
	email *EmailService,
) *NotificationService {
	return &NotificationService{
		config:                 cfg,
		userCollection:         userCollection,
		notificationCollection: notificationCollection,
		deviceTokenCollection:  deviceTokenCollection,
		preferences:            preferences,
		email:                  email,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateForUser stores and delivers one notification, honoring the user's
// preferences per channel. Returns the stored notification, or nil when the
// in-app channel is gated off for this type. A suppressed channel is not an
// error.
func (ns *NotificationService) CreateForUser(ctx context.Context, userID primitive.ObjectID, in CreateNotificationInput) (*models.Notification, error) {
	in.Type = models.NormalizeNotificationType(in.Type)

	prefs, err := ns.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var stored *models.Notification
	if prefs.AllowsInApp(in.Type) {
		notification := models.Notification{
			UserID:    userID,
			Type:      in.Type,
			Title:     in.Title,
			Message:   in.Message,
			Link:      in.Link,
			IsRead:    false,
			CreatedAt: time.Now(),
		}

		result, err := ns.notificationCollection.InsertOne(ctx, notification)
		if err != nil {
			return nil, fmt.Errorf("failed to save notification: %w", err)
		}
		notification.ID = result.InsertedID.(primitive.ObjectID)
		stored = &notification
	}

	// Push and email are suppressed inside the quiet-hours window.
	if prefs.QuietHours.Contains(time.Now()) {
		return stored, nil
	}

	if prefs.AllowsPush(in.Type) {
		if err := ns.sendPush(ctx, userID, in); err != nil {
			logrus.WithError(err).WithField("user_id", userID.Hex()).Warn("Push delivery failed")
		}
	}

	if prefs.AllowsEmail(in.Type) {
		if err := ns.sendEmail(ctx, userID, in); err != nil {
			logrus.WithError(err).WithField("user_id", userID.Hex()).Warn("Email delivery failed")
		}
	}

	return stored, nil
}

// Broadcast creates one notification per active (non-blocked) user. Failures
// for individual users are logged and skipped; the returned count is the
// number of recipients actually processed.
func (ns *NotificationService) Broadcast(ctx context.Context, in CreateNotificationInput) (int, error) {
	cursor, err := ns.userCollection.Find(ctx, bson.M{"is_blocked": false})
	if err != nil {
		return 0, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		if _, err := ns.CreateForUser(ctx, user.ID, in); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Broadcast delivery failed")
			continue
		}
		count++
	}

	return count, cursor.Err()
}

// SendMaintenance broadcasts a system notification about scheduled
// maintenance.
func (ns *NotificationService) SendMaintenance(ctx context.Context, message string, scheduledAt time.Time) (int, error) {
	in := CreateNotificationInput{
		Type:    models.NotificationTypeSystem,
		Title:   "Scheduled maintenance",
		Message: fmt.Sprintf("Maintenance window %s. %s", scheduledAt.Format("02 Jan 2006 15:04 MST"), message),
	}
	return ns.Broadcast(ctx, in)
}

// List returns one page of the user's notifications, newest first, together
// with the filtered total and the unread count. The unread count is always
// recomputed from the collection, never tracked separately.
func (ns *NotificationService) List(ctx context.Context, userID primitive.ObjectID, opts ListOptions) ([]models.Notification, int64, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}

	filter := bson.M{"user_id": userID}
	if opts.Read != nil {
		filter["is_read"] = *opts.Read
	}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}

	total, err := ns.notificationCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	unread, err := ns.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}

	skip := (opts.Page - 1) * opts.Limit
	findOptions := options.Find().
		SetLimit(int64(opts.Limit)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := ns.notificationCollection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, total, unread, nil
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := ns.notificationCollection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one owned notification as read. Marking an already-read
// notification matches the same document and is a no-op, so the call is
// idempotent. Returns false when the notification does not exist or belongs
// to another user.
func (ns *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID primitive.ObjectID) (bool, error) {
	now := time.Now()
	result, err := ns.notificationCollection.UpdateOne(
		ctx,
		bson.M{
			"_id":     notificationID,
			"user_id": userID,
		},
		bson.M{
			"$set": bson.M{
				"is_read": true,
				"read_at": now,
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// MarkAllAsRead marks every unread notification of the user as read. This is
// the only operation that mutates more than one document.
func (ns *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now()
	result, err := ns.notificationCollection.UpdateMany(
		ctx,
		bson.M{
			"user_id": userID,
			"is_read": false,
		},
		bson.M{
			"$set": bson.M{
				"is_read": true,
				"read_at": now,
			},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return result.ModifiedCount, nil
}

// Delete removes one owned notification. Returns false when nothing was
// deleted.
func (ns *NotificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) (bool, error) {
	result, err := ns.notificationCollection.DeleteOne(ctx, bson.M{
		"_id":     notificationID,
		"user_id": userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// TypeStats holds per-type totals for the analytics view.
type TypeStats struct {
	Total int `bson:"count" json:"total"`
	Read  int `bson:"read" json:"read"`
}

// Stats aggregates notification counts per type across all users.
func (ns *NotificationService) Stats(ctx context.Context) (map[string]TypeStats, int64, int64, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$type",
				"count": bson.M{"$sum": 1},
				"read":  bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_read", 1, 0}}},
			},
		},
	}

	cursor, err := ns.notificationCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to aggregate notification stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := make(map[string]TypeStats)
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int    `bson:"count"`
			Read  int    `bson:"read"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		stats[row.ID] = TypeStats{Total: row.Count, Read: row.Read}
	}

	total, _ := ns.notificationCollection.CountDocuments(ctx, bson.M{})
	read, _ := ns.notificationCollection.CountDocuments(ctx, bson.M{"is_read": true})

	return stats, total, read, nil
}

// RegisterDevice stores or reactivates an FCM device token for the user.
func (ns *NotificationService) RegisterDevice(ctx context.Context, userID primitive.ObjectID, token, platform string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"user_id":    userID,
			"platform":   platform,
			"is_active":  true,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := ns.deviceTokenCollection.UpdateOne(ctx, bson.M{"fcm_token": token}, update, opts); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

// UnregisterDevice deactivates an FCM device token.
func (ns *NotificationService) UnregisterDevice(ctx context.Context, userID primitive.ObjectID, token string) (bool, error) {
	result, err := ns.deviceTokenCollection.UpdateOne(
		ctx,
		bson.M{
			"user_id":   userID,
			"fcm_token": token,
		},
		bson.M{
			"$set": bson.M{
				"is_active":  false,
				"updated_at": time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to unregister device token: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// Delivery helpers

func (ns *NotificationService) sendPush(ctx context.Context, userID primitive.ObjectID, in CreateNotificationInput) error {
	tokens, err := ns.activeTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	data := map[string]interface{}{
		"type": in.Type,
	}
	if in.Link != "" {
		data["link"] = in.Link
	}

	// FCM caps registration ids at 1000 per request.
	batchSize := 1000
	for i := 0; i < len(tokens); i += batchSize {
		end := i + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		if err := ns.sendFCMBatch(tokens[i:end], in.Title, in.Message, data); err != nil {
			return err
		}
	}
	return nil
}

func (ns *NotificationService) sendEmail(ctx context.Context, userID primitive.ObjectID, in CreateNotificationInput) error {
	var user models.User
	if err := ns.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	body := in.Message
	if in.Link != "" {
		body = fmt.Sprintf("%s\n\n%s", in.Message, in.Link)
	}
	return ns.email.Send(user.Email, in.Title, body)
}

func (ns *NotificationService) activeTokens(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	cursor, err := ns.deviceTokenCollection.Find(ctx, bson.M{
		"user_id":   userID,
		"is_active": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []string
	for cursor.Next(ctx) {
		var deviceToken models.DeviceToken
		if err := cursor.Decode(&deviceToken); err != nil {
			continue
		}
		tokens = append(tokens, deviceToken.FCMToken)
	}
	return tokens, nil
}

func (ns *NotificationService) sendFCMBatch(tokens []string, title, body string, data map[string]interface{}) error {
	if ns.config.FirebaseKey == "" {
		return fmt.Errorf("Firebase key is not configured")
	}

	message := fcmMessage{
		RegistrationIDs: tokens,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
			Icon:  "ic_notification",
			Sound: "default",
		},
		Data:       data,
		Priority:   "high",
		TimeToLive: 3600,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal FCM message: %w", err)
	}

	req, err := http.NewRequest("POST", fcmEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create FCM request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+ns.config.FirebaseKey)

	resp, err := ns.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send FCM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FCM request failed with status: %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return fmt.Errorf("failed to decode FCM response: %w", err)
	}

	ns.handleFCMResponse(fcmResp, tokens)
	return nil
}

// handleFCMResponse deactivates dead tokens and follows canonical id updates.
func (ns *NotificationService) handleFCMResponse(response fcmResponse, tokens []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i, result := range response.Results {
		if i >= len(tokens) {
			break
		}
		token := tokens[i]

		if result.Error == "NotRegistered" || result.Error == "InvalidRegistration" {
			ns.deviceTokenCollection.UpdateOne(ctx, bson.M{
				"fcm_token": token,
			}, bson.M{
				"$set": bson.M{
					"is_active":  false,
					"updated_at": time.Now(),
				},
			})
		}

		if result.RegistrationID != "" {
			ns.deviceTokenCollection.UpdateOne(ctx, bson.M{
				"fcm_token": token,
			}, bson.M{
				"$set": bson.M{
					"fcm_token":  result.RegistrationID,
					"updated_at": time.Now(),
				},
			})
		}
	}
}
