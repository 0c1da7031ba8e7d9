package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	assert := assert.New(t)

	s := Service{Price: 100}
	assert.InDelta(100.0, s.EffectivePrice(), 1e-9)

	s.Discount = 25
	assert.InDelta(75.0, s.EffectivePrice(), 1e-9)

	s.Discount = 100
	assert.InDelta(0.0, s.EffectivePrice(), 1e-9)

	s.Discount = 150
	assert.InDelta(0.0, s.EffectivePrice(), 1e-9)

	s.Discount = -10
	assert.InDelta(100.0, s.EffectivePrice(), 1e-9, "negative discount is ignored")
}
