package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activeCoupon() Coupon {
	return Coupon{
		Code:           "SAVE-TEST",
		Type:           CouponTypePercentage,
		Value:          20,
		MinOrderAmount: 10,
		MaxUses:        100,
		UsedCount:      0,
		ValidFrom:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		Active:         true,
	}
}

func TestCouponValidate(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	c := activeCoupon()
	assert.NoError(c.Validate(now, 50))

	c = activeCoupon()
	c.Active = false
	assert.ErrorIs(c.Validate(now, 50), ErrCouponInactive)

	c = activeCoupon()
	assert.ErrorIs(c.Validate(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 50), ErrCouponNotStarted)

	c = activeCoupon()
	assert.ErrorIs(c.Validate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50), ErrCouponExpired)

	c = activeCoupon()
	c.UsedCount = 100
	assert.ErrorIs(c.Validate(now, 50), ErrCouponExhausted)

	c = activeCoupon()
	c.MaxUses = 0
	c.UsedCount = 100000
	assert.NoError(c.Validate(now, 50), "zero max uses means unlimited")

	c = activeCoupon()
	assert.ErrorIs(c.Validate(now, 5), ErrCouponMinOrder)
}

func TestCouponDiscountFor(t *testing.T) {
	assert := assert.New(t)

	c := activeCoupon()
	assert.InDelta(10.0, c.DiscountFor(50), 1e-9, "20% of 50")

	c.Type = CouponTypeFixed
	c.Value = 15
	assert.InDelta(15.0, c.DiscountFor(50), 1e-9)
	assert.InDelta(10.0, c.DiscountFor(10), 1e-9, "discount capped at the order total")

	c.Value = -5
	assert.InDelta(0.0, c.DiscountFor(50), 1e-9, "negative discount clamps to zero")

	c.Type = "bogof"
	assert.InDelta(0.0, c.DiscountFor(50), 1e-9, "unknown type discounts nothing")
}
