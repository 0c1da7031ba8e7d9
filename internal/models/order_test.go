package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderStatus(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{"pending", "processing", "in_progress", "completed", "partial", "canceled"} {
		got, ok := NormalizeOrderStatus(s)
		assert.True(ok, s)
		assert.Equal(s, got)
	}

	got, ok := NormalizeOrderStatus("rejected")
	assert.True(ok)
	assert.Equal(OrderStatusCanceled, got, "legacy spelling maps to canceled")

	_, ok = NormalizeOrderStatus("cancelled")
	assert.False(ok, "British spelling is not accepted")

	_, ok = NormalizeOrderStatus("")
	assert.False(ok)
}

func TestValidServiceType(t *testing.T) {
	assert := assert.New(t)

	assert.True(ValidServiceType(ServiceTypeFollowers))
	assert.True(ValidServiceType(ServiceTypeLikes))
	assert.True(ValidServiceType(ServiceTypeViews))
	assert.True(ValidServiceType(ServiceTypeComments))
	assert.False(ValidServiceType("subscribers"))
	assert.False(ValidServiceType(""))
}
