package tag

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status marks whether a tag is usable or retired.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Tag is one persisted tag document. CanonicalName is the case/whitespace
// normalized key every casing variant resolves to; RawName tracks the casing
// the most recent caller used.
type Tag struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawName       string             `bson:"rawName" json:"rawName"`
	CanonicalName string             `bson:"canonicalName" json:"canonicalName"`
	Status        Status             `bson:"status" json:"status"`
	IsOfficial    bool               `bson:"isOfficial" json:"isOfficial"`
	UsageCount    int64              `bson:"usageCount" json:"usageCount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
