package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNotificationType(t *testing.T) {
	assert := assert.New(t)

	for _, typ := range []string{
		NotificationTypeOrderUpdate,
		NotificationTypePayment,
		NotificationTypeSupport,
		NotificationTypePromo,
		NotificationTypeSystem,
	} {
		assert.Equal(typ, NormalizeNotificationType(typ))
	}

	assert.Equal(NotificationTypeSystem, NormalizeNotificationType("marketing"), "unknown types degrade to system")
	assert.Equal(NotificationTypeSystem, NormalizeNotificationType(""))
}

func TestValidNotificationType(t *testing.T) {
	assert := assert.New(t)

	assert.True(ValidNotificationType(NotificationTypeOrderUpdate))
	assert.False(ValidNotificationType("marketing"))
}
