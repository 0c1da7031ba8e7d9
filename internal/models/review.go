package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Rating      int                `bson:"rating" json:"rating"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Content     string             `bson:"content" json:"content"`
	ServiceType string             `bson:"service_type,omitempty" json:"serviceType,omitempty"`
	Approved    bool               `bson:"approved" json:"approved"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
