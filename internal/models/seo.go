package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SEOSetting holds the meta tags for one public page, keyed by page id
// ("home", "pricing", "blog", ...).
type SEOSetting struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PageID         string             `bson:"page_id" json:"pageId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Keywords       []string           `bson:"keywords,omitempty" json:"keywords,omitempty"`
	OGTitle        string             `bson:"og_title,omitempty" json:"ogTitle,omitempty"`
	OGDescription  string             `bson:"og_description,omitempty" json:"ogDescription,omitempty"`
	OGImage        string             `bson:"og_image,omitempty" json:"ogImage,omitempty"`
	CanonicalURL   string             `bson:"canonical_url,omitempty" json:"canonicalUrl,omitempty"`
	RobotsNoIndex  bool               `bson:"robots_no_index" json:"robotsNoIndex"`
	StructuredData string             `bson:"structured_data,omitempty" json:"structuredData,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}
