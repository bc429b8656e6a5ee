package nugget

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nuggets/internal/media"
)

// Visibility controls who can see a nugget.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// SourceType records whether a nugget is anchored to an external source.
type SourceType string

const (
	SourceTypeLink SourceType = "link"
	SourceTypeText SourceType = "text"
)

// Article is the persisted nugget document. The embedded media.Article
// carries every current and legacy media field so the extractor can audit
// stored documents directly.
type Article struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	Excerpt       string             `bson:"excerpt" json:"excerpt"`
	ReadTime      int                `bson:"readTime" json:"readTime"`
	Categories    []string           `bson:"categories" json:"categories"`
	Tags          []string           `bson:"tags" json:"tags"`
	Visibility    Visibility         `bson:"visibility" json:"visibility"`
	media.Article `bson:",inline"`
	MediaIDs      []string         `bson:"mediaIds,omitempty" json:"mediaIds,omitempty"`
	Documents     []media.Document `bson:"documents,omitempty" json:"documents,omitempty"`
	SourceType    SourceType       `bson:"source_type" json:"source_type"`
	CreatedAt     time.Time        `bson:"createdAt" json:"createdAt"`
	ModifiedAt    time.Time        `bson:"modifiedAt" json:"modifiedAt"`
}
