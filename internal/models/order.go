package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. "canceled" is the canonical terminal name; the legacy
// "rejected" spelling is accepted on input and normalized at the boundary.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusPartial    = "partial"
	OrderStatusCanceled   = "canceled"
)

// Service types sold by the platform
const (
	ServiceTypeFollowers = "followers"
	ServiceTypeLikes     = "likes"
	ServiceTypeViews     = "views"
	ServiceTypeComments  = "comments"
)

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	SocialUsername  string             `bson:"social_username" json:"socialUsername"`
	PostURL         string             `bson:"post_url,omitempty" json:"postUrl,omitempty"`
	ServiceID       primitive.ObjectID `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	ServiceType     string             `bson:"service_type" json:"serviceType"`
	Quality         string             `bson:"quality" json:"quality"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Price           float64            `bson:"price" json:"price"`
	Status          string             `bson:"status" json:"status"`
	SupplierOrderID string             `bson:"supplier_order_id,omitempty" json:"supplierOrderId,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusInProgress,
		OrderStatusCompleted, OrderStatusPartial, OrderStatusCanceled:
		return true
	}
	return false
}

// NormalizeOrderStatus translates inbound status spellings to the canonical
// set. Returns false when the status is not recognized at all.
func NormalizeOrderStatus(s string) (string, bool) {
	if s == "rejected" {
		return OrderStatusCanceled, true
	}
	if ValidOrderStatus(s) {
		return s, true
	}
	return "", false
}

func ValidServiceType(t string) bool {
	switch t {
	case ServiceTypeFollowers, ServiceTypeLikes, ServiceTypeViews, ServiceTypeComments:
		return true
	}
	return false
}
