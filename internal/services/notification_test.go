package services

import (
	"context"
	"testing"

	"github.com/highgoal215/socialsale-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockNotificationService(mt *mtest.T) *NotificationService {
	cfg := &config.Config{}
	return NewNotificationService(
		cfg,
		mt.Coll, mt.Coll, mt.Coll,
		NewPreferencesService(mt.Coll),
		NewEmailService(cfg),
	)
}

// ownerFilterOf extracts the user_id from the first update/delete statement
// of the captured command.
func ownerFilterOf(t *testing.T, mt *mtest.T, key string) primitive.ObjectID {
	t.Helper()
	evt := mt.GetStartedEvent()
	stmts, err := evt.Command.Lookup(key).Array().Values()
	assert.NoError(t, err)
	id, ok := stmts[0].Document().Lookup("q").Document().Lookup("user_id").ObjectIDOK()
	assert.True(t, ok, "statement filter must be owner-scoped")
	return id
}

func TestMarkAsRead(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("already read is a matched no-op", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)
		userID := primitive.NewObjectID()

		// Matched but not modified: the document was read already.
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		found, err := ns.MarkAsRead(context.Background(), userID, primitive.NewObjectID())
		assert.NoError(err)
		assert.True(found, "a matched document counts as success even when unmodified")
		assert.Equal(userID, ownerFilterOf(t, mt, "updates"))
	})

	mt.Run("another user's notification is not found", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		found, err := ns.MarkAsRead(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.NoError(err)
		assert.False(found)
	})
}

func TestMarkAllAsRead(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reports modified count", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)
		userID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 3},
			bson.E{Key: "nModified", Value: 3},
		))

		updated, err := ns.MarkAllAsRead(context.Background(), userID)
		assert.NoError(err)
		assert.EqualValues(3, updated)
		assert.Equal(userID, ownerFilterOf(t, mt, "updates"))
	})

	mt.Run("nothing unread modifies nothing", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		updated, err := ns.MarkAllAsRead(context.Background(), primitive.NewObjectID())
		assert.NoError(err)
		assert.EqualValues(0, updated)
	})
}

func TestDeleteNotification(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("owned notification is deleted", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)
		userID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		deleted, err := ns.Delete(context.Background(), userID, primitive.NewObjectID())
		assert.NoError(err)
		assert.True(deleted)
		assert.Equal(userID, ownerFilterOf(t, mt, "deletes"))
	})

	mt.Run("another user's notification is not deleted", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		deleted, err := ns.Delete(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.NoError(err)
		assert.False(deleted)
	})
}

func TestUnreadCount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the queried count", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "socialsale.notifications", mtest.FirstBatch,
			bson.D{{Key: "n", Value: 4}}))

		count, err := ns.UnreadCount(context.Background(), primitive.NewObjectID())
		assert.NoError(err)
		assert.EqualValues(4, count)

		// The count is always derived from an is_read query, never a stored
		// counter.
		evt := mt.GetStartedEvent()
		assert.Equal("aggregate", evt.CommandName)
		pipeline, err := evt.Command.Lookup("pipeline").Array().Values()
		assert.NoError(err)
		match := pipeline[0].Document().Lookup("$match").Document()
		isRead, ok := match.Lookup("is_read").BooleanOK()
		assert.True(ok)
		assert.False(isRead)
	})

	mt.Run("zero when everything is read", func(mt *mtest.T) {
		assert := assert.New(t)
		ns := newMockNotificationService(mt)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "socialsale.notifications", mtest.FirstBatch))

		count, err := ns.UnreadCount(context.Background(), primitive.NewObjectID())
		assert.NoError(err)
		assert.EqualValues(0, count)
	})
}
