package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildOrderFilterEmpty(t *testing.T) {
	assert := assert.New(t)

	filter := buildOrderFilter(OrderFilters{})
	assert.Empty(filter)

	filter = buildOrderFilter(OrderFilters{Type: "all", Status: "all"})
	assert.Empty(filter, `"all" means no filter`)
}

func TestBuildOrderFilterCombines(t *testing.T) {
	assert := assert.New(t)

	filter := buildOrderFilter(OrderFilters{
		Type:   "followers",
		Status: "completed",
		Search: "insta_user",
	})

	assert.Equal("followers", filter["service_type"])
	assert.Equal("completed", filter["status"])

	or, ok := filter["$or"].([]bson.M)
	assert.True(ok)
	assert.Len(or, 1, "non-hex search matches username only")
	assert.Equal(bson.M{
		"$regex":   "insta_user",
		"$options": "i",
	}, or[0]["social_username"])
}

func TestBuildOrderFilterNormalizesStatus(t *testing.T) {
	assert := assert.New(t)

	filter := buildOrderFilter(OrderFilters{Status: "rejected"})
	assert.Equal("canceled", filter["status"])
}

func TestBuildOrderFilterSearchByID(t *testing.T) {
	assert := assert.New(t)

	id := primitive.NewObjectID()
	filter := buildOrderFilter(OrderFilters{Search: id.Hex()})

	or, ok := filter["$or"].([]bson.M)
	assert.True(ok)
	assert.Len(or, 2, "hex search matches username or exact id")
	assert.Equal(id, or[1]["_id"])
}

func TestBuildOrderFilterEscapesRegex(t *testing.T) {
	assert := assert.New(t)

	filter := buildOrderFilter(OrderFilters{Search: "user.name+1"})
	or := filter["$or"].([]bson.M)
	assert.Equal(`user\.name\+1`, or[0]["social_username"].(bson.M)["$regex"])
}

func TestBuildOrderSort(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(bson.D{{Key: "created_at", Value: -1}}, buildOrderSort("", ""))
	assert.Equal(bson.D{{Key: "price", Value: 1}}, buildOrderSort("price", "asc"))
	assert.Equal(bson.D{{Key: "price", Value: -1}}, buildOrderSort("price", "desc"))
	assert.Equal(bson.D{{Key: "created_at", Value: 1}}, buildOrderSort("password", "asc"),
		"unknown columns fall back to created_at but keep the direction request")
}

func TestCouponClaimFilter(t *testing.T) {
	assert := assert.New(t)

	id := primitive.NewObjectID()
	filter := couponClaimFilter(id)

	assert.Equal(id, filter["_id"])

	or, ok := filter["$or"].([]bson.M)
	assert.True(ok)
	assert.Len(or, 2)
	assert.Equal(bson.M{"max_uses": 0}, or[0], "unlimited coupons always match")
	assert.Equal(bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}}, or[1],
		"limited coupons match only below the cap")
}

func TestNotifiableStatus(t *testing.T) {
	assert := assert.New(t)

	assert.True(notifiableStatus("processing"))
	assert.True(notifiableStatus("completed"))
	assert.True(notifiableStatus("canceled"))
	assert.False(notifiableStatus("pending"))
	assert.False(notifiableStatus("in_progress"))
	assert.False(notifiableStatus("partial"))
	assert.False(notifiableStatus(""))
}

func TestTotalPages(t *testing.T) {
	assert := assert.New(t)

	assert.EqualValues(0, totalPages(0, 10))
	assert.EqualValues(1, totalPages(1, 10))
	assert.EqualValues(1, totalPages(10, 10))
	assert.EqualValues(2, totalPages(11, 10))
	assert.EqualValues(3, totalPages(25, 10))
	assert.EqualValues(0, totalPages(25, 0), "zero limit yields zero pages")
}
