package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service qualities
const (
	QualityRegular = "regular"
	QualityPremium = "premium"
)

// Service is one entry in the pricing catalog: a quantity of a service type
// at a given quality, with an optional discount.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"`
	Quality     string             `bson:"quality" json:"quality"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       float64            `bson:"price" json:"price"`
	Discount    float64            `bson:"discount" json:"discount"` // percent, 0-100
	Active      bool               `bson:"active" json:"active"`
	Popular     bool               `bson:"popular" json:"popular"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// EffectivePrice applies the discount percentage.
func (s *Service) EffectivePrice() float64 {
	if s.Discount <= 0 {
		return s.Price
	}
	if s.Discount >= 100 {
		return 0
	}
	return s.Price * (1 - s.Discount/100)
}
