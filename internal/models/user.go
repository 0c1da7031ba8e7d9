package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	IsAdmin   bool `bson:"is_admin" json:"isAdmin"`
	IsBlocked bool `bson:"is_blocked" json:"isBlocked"`

	OrderCount int     `bson:"order_count" json:"orderCount"`
	TotalSpent float64 `bson:"total_spent" json:"totalSpent"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
}

// DisplayName is the name shown in the dashboard. A missing username must
// never break rendering.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown User"
}
