package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	IsRead    bool               `bson:"is_read" json:"read"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Notification types
const (
	NotificationTypeOrderUpdate = "order_update"
	NotificationTypePayment     = "payment"
	NotificationTypeSupport     = "support"
	NotificationTypePromo       = "promo"
	NotificationTypeSystem      = "system"
)

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeOrderUpdate, NotificationTypePayment, NotificationTypeSupport,
		NotificationTypePromo, NotificationTypeSystem:
		return true
	}
	return false
}

// NormalizeNotificationType degrades unknown types to the generic system type
// so a bad payload never breaks delivery or rendering.
func NormalizeNotificationType(t string) string {
	if ValidNotificationType(t) {
		return t
	}
	return NotificationTypeSystem
}
