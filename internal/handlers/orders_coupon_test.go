package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/config"
	"github.com/highgoal215/socialsale-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func checkoutRouter(mt *mtest.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(
		mt.Coll, mt.Coll, mt.Coll,
		nil,
		services.NewSupplierService(&config.Config{}),
	)
	router := gin.New()
	router.POST("/orders", h.CreateOrder)
	return router
}

func serviceDoc(serviceID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: serviceID},
		{Key: "name", Value: "1000 Followers"},
		{Key: "type", Value: "followers"},
		{Key: "quality", Value: "regular"},
		{Key: "quantity", Value: 1000},
		{Key: "price", Value: 100.0},
		{Key: "active", Value: true},
	}
}

func couponDoc(couponID primitive.ObjectID, maxUses, usedCount int) bson.D {
	return bson.D{
		{Key: "_id", Value: couponID},
		{Key: "code", Value: "SAVE-TEST1"},
		{Key: "type", Value: "percentage"},
		{Key: "value", Value: 10.0},
		{Key: "max_uses", Value: maxUses},
		{Key: "used_count", Value: usedCount},
		{Key: "valid_until", Value: primitive.NewDateTimeFromTime(time.Now().Add(24 * time.Hour))},
		{Key: "active", Value: true},
	}
}

func postOrder(router *gin.Engine, serviceID primitive.ObjectID) *httptest.ResponseRecorder {
	body := `{"socialUsername":"insta_user","serviceId":"` + serviceID.Hex() + `","couponCode":"SAVE-TEST1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateOrderCouponClaim(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("exhausted claim rejects the order", func(mt *mtest.T) {
		assert := assert.New(t)
		serviceID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.services", mtest.FirstBatch, serviceDoc(serviceID)),
			mtest.CreateCursorResponse(0, "socialsale.coupons", mtest.FirstBatch, couponDoc(primitive.NewObjectID(), 5, 4)),
			// The guarded increment matches nothing: a concurrent checkout
			// took the last use between the read and the claim.
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		w := postOrder(checkoutRouter(mt), serviceID)
		assert.Equal(http.StatusBadRequest, w.Code)
		assert.Contains(w.Body.String(), "usage limit")
	})

	mt.Run("failed insert releases the claimed use", func(mt *mtest.T) {
		assert := assert.New(t)
		serviceID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.services", mtest.FirstBatch, serviceDoc(serviceID)),
			mtest.CreateCursorResponse(0, "socialsale.coupons", mtest.FirstBatch, couponDoc(primitive.NewObjectID(), 5, 0)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "write failed"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		w := postOrder(checkoutRouter(mt), serviceID)
		assert.Equal(http.StatusInternalServerError, w.Code)

		// find (service), find (coupon), update (claim), insert, update (release)
		mt.GetStartedEvent()
		mt.GetStartedEvent()
		mt.GetStartedEvent()
		insertEvt := mt.GetStartedEvent()
		assert.Equal("insert", insertEvt.CommandName)

		releaseEvt := mt.GetStartedEvent()
		assert.Equal("update", releaseEvt.CommandName)
		updates, err := releaseEvt.Command.Lookup("updates").Array().Values()
		assert.NoError(err)
		inc, ok := updates[0].Document().
			Lookup("u").Document().
			Lookup("$inc").Document().
			Lookup("used_count").AsInt64OK()
		assert.True(ok)
		assert.EqualValues(-1, inc)
	})

	mt.Run("successful checkout consumes one use", func(mt *mtest.T) {
		assert := assert.New(t)
		serviceID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialsale.services", mtest.FirstBatch, serviceDoc(serviceID)),
			mtest.CreateCursorResponse(0, "socialsale.coupons", mtest.FirstBatch, couponDoc(primitive.NewObjectID(), 5, 0)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		w := postOrder(checkoutRouter(mt), serviceID)
		assert.Equal(http.StatusCreated, w.Code)
		assert.Contains(w.Body.String(), `"price":90`, "10% coupon applied")
	})
}
