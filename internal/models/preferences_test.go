package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustTime(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
}

func TestQuietHoursContainsSameDayWindow(t *testing.T) {
	assert := assert.New(t)

	qh := QuietHours{Enabled: true, Start: "09:00", End: "17:00", Timezone: "UTC"}

	assert.True(qh.Contains(mustTime(t, 9, 0)), "start boundary is inside")
	assert.True(qh.Contains(mustTime(t, 12, 30)))
	assert.False(qh.Contains(mustTime(t, 17, 0)), "end boundary is outside")
	assert.False(qh.Contains(mustTime(t, 8, 59)))
	assert.False(qh.Contains(mustTime(t, 22, 0)))
}

func TestQuietHoursContainsWrapsMidnight(t *testing.T) {
	assert := assert.New(t)

	qh := QuietHours{Enabled: true, Start: "22:00", End: "06:00", Timezone: "UTC"}

	assert.True(qh.Contains(mustTime(t, 23, 30)))
	assert.True(qh.Contains(mustTime(t, 2, 0)))
	assert.True(qh.Contains(mustTime(t, 22, 0)), "start boundary is inside")
	assert.False(qh.Contains(mustTime(t, 6, 0)), "end boundary is outside")
	assert.False(qh.Contains(mustTime(t, 12, 0)))
	assert.False(qh.Contains(mustTime(t, 21, 59)))
}

func TestQuietHoursDisabled(t *testing.T) {
	assert := assert.New(t)

	qh := QuietHours{Enabled: false, Start: "22:00", End: "06:00", Timezone: "UTC"}
	assert.False(qh.Contains(mustTime(t, 23, 0)))
}

func TestQuietHoursTimezone(t *testing.T) {
	assert := assert.New(t)

	// 23:00 UTC is 02:00 in Helsinki (EEST, UTC+3), inside a 00:00-06:00 window there.
	qh := QuietHours{Enabled: true, Start: "00:00", End: "06:00", Timezone: "Europe/Helsinki"}
	assert.True(qh.Contains(mustTime(t, 23, 0)))
	assert.False(qh.Contains(mustTime(t, 12, 0)))
}

func TestQuietHoursBadTimezoneFallsBackToUTC(t *testing.T) {
	assert := assert.New(t)

	qh := QuietHours{Enabled: true, Start: "22:00", End: "06:00", Timezone: "Not/AZone"}
	assert.True(qh.Contains(mustTime(t, 23, 0)))
	assert.False(qh.Contains(mustTime(t, 12, 0)))
}

func TestQuietHoursBadClockNeverMatches(t *testing.T) {
	assert := assert.New(t)

	qh := QuietHours{Enabled: true, Start: "25:00", End: "06:00", Timezone: "UTC"}
	assert.False(qh.Contains(mustTime(t, 23, 0)))
}

func TestDefaultPreferences(t *testing.T) {
	assert := assert.New(t)

	userID := primitive.NewObjectID()
	prefs := DefaultPreferences(userID)

	assert.Equal(userID, prefs.UserID)
	assert.True(prefs.OrderUpdates)
	assert.True(prefs.Payments)
	assert.True(prefs.Support)
	assert.True(prefs.Promotions)
	assert.True(prefs.System)
	assert.True(prefs.InApp)
	assert.True(prefs.Email)
	assert.False(prefs.Push)
	assert.Equal(FrequencyImmediate, prefs.Frequency)
	assert.False(prefs.QuietHours.Enabled)
	assert.Equal("22:00", prefs.QuietHours.Start)
	assert.Equal("08:00", prefs.QuietHours.End)
	assert.False(prefs.EmailPreferences.Promotions, "promo email defaults to opt-in")
}

func TestChannelGating(t *testing.T) {
	assert := assert.New(t)

	prefs := DefaultPreferences(primitive.NewObjectID())

	assert.True(prefs.AllowsInApp(NotificationTypeOrderUpdate))
	assert.True(prefs.AllowsEmail(NotificationTypeOrderUpdate))
	assert.False(prefs.AllowsPush(NotificationTypeOrderUpdate), "push is off by default")

	// Disabling the type gates in-app and push; email has its own toggles.
	prefs.OrderUpdates = false
	assert.False(prefs.AllowsInApp(NotificationTypeOrderUpdate))
	assert.False(prefs.AllowsPush(NotificationTypeOrderUpdate))
	assert.True(prefs.AllowsEmail(NotificationTypeOrderUpdate))

	// Email requires both the email channel and the per-type email toggle.
	prefs.OrderUpdates = true
	prefs.EmailPreferences.OrderUpdates = false
	assert.False(prefs.AllowsEmail(NotificationTypeOrderUpdate))
	assert.True(prefs.AllowsInApp(NotificationTypeOrderUpdate), "in-app unaffected by email toggle")

	// Turning the email channel off gates all email types.
	prefs.Email = false
	assert.False(prefs.AllowsEmail(NotificationTypePayment))
	prefs.Email = true

	// Promo email is opt-in out of the box.
	assert.False(prefs.AllowsEmail(NotificationTypePromo))
	prefs.EmailPreferences.Promotions = true
	assert.True(prefs.AllowsEmail(NotificationTypePromo))
}

func TestNormalizeClampsInvalidValues(t *testing.T) {
	assert := assert.New(t)

	prefs := DefaultPreferences(primitive.NewObjectID())
	prefs.Frequency = "hourly-ish"
	prefs.QuietHours.Start = "26:99"
	prefs.QuietHours.End = ""
	prefs.QuietHours.Timezone = ""

	prefs.Normalize()

	assert.Equal(FrequencyImmediate, prefs.Frequency)
	assert.Equal("22:00", prefs.QuietHours.Start)
	assert.Equal("08:00", prefs.QuietHours.End)
	assert.Equal("UTC", prefs.QuietHours.Timezone)
}
