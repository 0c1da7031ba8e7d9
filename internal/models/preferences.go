package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Digest frequencies
const (
	FrequencyImmediate = "immediate"
	FrequencyHourly    = "hourly"
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
)

func ValidFrequency(f string) bool {
	switch f {
	case FrequencyImmediate, FrequencyHourly, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// QuietHours is a delivery-suppression window. The window may wrap midnight
// (start > end); start is inclusive, end is exclusive.
type QuietHours struct {
	Enabled  bool   `bson:"enabled" json:"enabled"`
	Start    string `bson:"start" json:"start" validate:"omitempty,clock"` // "HH:MM", 24h
	End      string `bson:"end" json:"end" validate:"omitempty,clock"`
	Timezone string `bson:"timezone" json:"timezone"`
}

// Contains reports whether t falls inside the quiet-hours window, evaluated
// in the configured timezone (UTC when the timezone is missing or unknown).
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}

	start, okStart := parseClock(q.Start)
	end, okEnd := parseClock(q.End)
	if !okStart || !okEnd || start == end {
		return false
	}

	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if start < end {
		return minute >= start && minute < end
	}
	// start > end: window spans midnight
	return minute >= start || minute < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' ||
		s[3] < '0' || s[3] > '9' || s[4] < '0' || s[4] > '9' {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// EmailPreferences gates the email channel per notification type,
// independently of the top-level per-type toggles (which gate in-app).
type EmailPreferences struct {
	OrderUpdates bool `bson:"order_updates" json:"orderUpdates"`
	Payments     bool `bson:"payments" json:"payments"`
	Support      bool `bson:"support" json:"support"`
	Promotions   bool `bson:"promotions" json:"promotions"`
	System       bool `bson:"system" json:"system"`
}

type NotificationPreferences struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`

	// Per-type toggles (gate in-app delivery of that type)
	OrderUpdates bool `bson:"order_updates" json:"orderUpdates"`
	Payments     bool `bson:"payments" json:"payments"`
	Support      bool `bson:"support" json:"support"`
	Promotions   bool `bson:"promotions" json:"promotions"`
	System       bool `bson:"system" json:"system"`

	// Delivery channels
	InApp bool `bson:"in_app" json:"inApp"`
	Email bool `bson:"email" json:"email"`
	Push  bool `bson:"push" json:"push"`

	Frequency  string     `bson:"frequency" json:"frequency" validate:"omitempty,oneof=immediate hourly daily weekly"`
	QuietHours QuietHours `bson:"quiet_hours" json:"quietHours"`

	// All fields are stored regardless of the email channel toggle; the form
	// only hides them while email is off.
	EmailPreferences EmailPreferences `bson:"email_preferences" json:"emailPreferences"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultPreferences is the server-defined default set used for get-or-create
// and reset. The client never invents its own defaults.
func DefaultPreferences(userID primitive.ObjectID) *NotificationPreferences {
	now := time.Now()
	return &NotificationPreferences{
		UserID:       userID,
		OrderUpdates: true,
		Payments:     true,
		Support:      true,
		Promotions:   true,
		System:       true,
		InApp:        true,
		Email:        true,
		Push:         false,
		Frequency:    FrequencyImmediate,
		QuietHours: QuietHours{
			Enabled:  false,
			Start:    "22:00",
			End:      "08:00",
			Timezone: "UTC",
		},
		EmailPreferences: EmailPreferences{
			OrderUpdates: true,
			Payments:     true,
			Support:      true,
			Promotions:   false,
			System:       true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TypeEnabled reports whether the per-type toggle for the given notification
// type is on. Unknown types fall back to the system toggle.
func (p *NotificationPreferences) TypeEnabled(notificationType string) bool {
	switch NormalizeNotificationType(notificationType) {
	case NotificationTypeOrderUpdate:
		return p.OrderUpdates
	case NotificationTypePayment:
		return p.Payments
	case NotificationTypeSupport:
		return p.Support
	case NotificationTypePromo:
		return p.Promotions
	default:
		return p.System
	}
}

// AllowsInApp reports whether a notification of the given type should be
// stored for in-app display.
func (p *NotificationPreferences) AllowsInApp(notificationType string) bool {
	return p.InApp && p.TypeEnabled(notificationType)
}

// AllowsEmail reports whether a notification of the given type should be
// emailed. The email channel toggle and the matching emailPreferences field
// must both be on.
func (p *NotificationPreferences) AllowsEmail(notificationType string) bool {
	if !p.Email {
		return false
	}
	switch NormalizeNotificationType(notificationType) {
	case NotificationTypeOrderUpdate:
		return p.EmailPreferences.OrderUpdates
	case NotificationTypePayment:
		return p.EmailPreferences.Payments
	case NotificationTypeSupport:
		return p.EmailPreferences.Support
	case NotificationTypePromo:
		return p.EmailPreferences.Promotions
	default:
		return p.EmailPreferences.System
	}
}

// AllowsPush reports whether a push notification of the given type should be
// sent. Push follows the top-level per-type toggle.
func (p *NotificationPreferences) AllowsPush(notificationType string) bool {
	return p.Push && p.TypeEnabled(notificationType)
}

// Normalize clamps free-form fields to valid values before persisting.
func (p *NotificationPreferences) Normalize() {
	if !ValidFrequency(p.Frequency) {
		p.Frequency = FrequencyImmediate
	}
	if _, ok := parseClock(p.QuietHours.Start); !ok {
		p.QuietHours.Start = "22:00"
	}
	if _, ok := parseClock(p.QuietHours.End); !ok {
		p.QuietHours.End = "08:00"
	}
	if p.QuietHours.Timezone == "" {
		p.QuietHours.Timezone = "UTC"
	}
}
