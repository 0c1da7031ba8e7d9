package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon discount types
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

var (
	ErrCouponInactive    = errors.New("coupon is not active")
	ErrCouponNotStarted  = errors.New("coupon is not valid yet")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrCouponMinOrder    = errors.New("order amount below coupon minimum")
	ErrCouponInvalidType = errors.New("unknown coupon type")
)

type Coupon struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string             `bson:"code" json:"code"`
	Type           string             `bson:"type" json:"type"`
	Value          float64            `bson:"value" json:"value"`
	MinOrderAmount float64            `bson:"min_order_amount" json:"minOrderAmount"`
	MaxUses        int                `bson:"max_uses" json:"maxUses"` // 0 = unlimited
	UsedCount      int                `bson:"used_count" json:"usedCount"`
	ValidFrom      time.Time          `bson:"valid_from" json:"validFrom"`
	ValidUntil     time.Time          `bson:"valid_until" json:"validUntil"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Validate checks whether the coupon can be applied to an order of the given
// amount at time now.
func (c *Coupon) Validate(now time.Time, amount float64) error {
	if !c.Active {
		return ErrCouponInactive
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return ErrCouponNotStarted
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return ErrCouponExhausted
	}
	if amount < c.MinOrderAmount {
		return ErrCouponMinOrder
	}
	return nil
}

// DiscountFor returns the discount amount for the given order total. The
// discount never exceeds the total.
func (c *Coupon) DiscountFor(amount float64) float64 {
	var discount float64
	switch c.Type {
	case CouponTypePercentage:
		discount = amount * c.Value / 100
	case CouponTypeFixed:
		discount = c.Value
	default:
		return 0
	}
	if discount > amount {
		return amount
	}
	if discount < 0 {
		return 0
	}
	return discount
}
