package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("how-to-grow-followers", slugify("How to Grow Followers"))
	assert.Equal("10-tips-tricks", slugify("  10 Tips & Tricks!  "))
	assert.Equal("already-a-slug", slugify("already-a-slug"))
	assert.Equal("", slugify("!!!"))
}

func TestGenerateCouponCode(t *testing.T) {
	assert := assert.New(t)

	code := generateCouponCode()
	assert.True(strings.HasPrefix(code, "SAVE-"))
	assert.Len(code, 13)
	assert.Equal(code, strings.ToUpper(code))

	assert.NotEqual(code, generateCouponCode())
}
