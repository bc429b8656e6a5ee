package media

// Type classifies what a URL points at.
type Type string

const (
	TypeImage    Type = "image"
	TypeVideo    Type = "video"
	TypeDocument Type = "document"
	TypeLink     Type = "link"
	TypeText     Type = "text"
	TypeYouTube  Type = "youtube"
)

// PreviewMetadata carries link-unfurl results for a URL.
type PreviewMetadata struct {
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	SiteName    string `bson:"siteName,omitempty" json:"siteName,omitempty"`
	Favicon     string `bson:"favicon,omitempty" json:"favicon,omitempty"`
	Provider    string `bson:"provider,omitempty" json:"provider,omitempty"`
	MediaType   Type   `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
}

// Descriptor is one media item attached to an article, either the primary
// (hero) item or a supporting one.
type Descriptor struct {
	Type            Type             `bson:"type" json:"type"`
	URL             string           `bson:"url" json:"url"`
	Thumbnail       string           `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	PreviewMetadata *PreviewMetadata `bson:"previewMetadata,omitempty" json:"previewMetadata,omitempty"`
	ShowInMasonry   *bool            `bson:"showInMasonry,omitempty" json:"showInMasonry,omitempty"`
	MasonryTitle    string           `bson:"masonryTitle,omitempty" json:"masonryTitle,omitempty"`
}

// MasonrySource tags where a masonry tile came from.
type MasonrySource string

const (
	SourcePrimary     MasonrySource = "primary"
	SourceSupporting  MasonrySource = "supporting"
	SourceLegacyImage MasonrySource = "legacy-image"
)

// MasonryItem is the working representation of one media tile, carrying the
// user's explicit ordering and visibility decisions.
type MasonryItem struct {
	ID              string           `json:"id"`
	Type            Type             `json:"type"`
	URL             string           `json:"url"`
	Thumbnail       string           `json:"thumbnail,omitempty"`
	Source          MasonrySource    `json:"source"`
	ShowInMasonry   bool             `json:"showInMasonry"`
	MasonryTitle    string           `json:"masonryTitle,omitempty"`
	PreviewMetadata *PreviewMetadata `json:"previewMetadata,omitempty"`
}

// Document describes an uploaded document attachment.
type Document struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
	Size int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// Article is the media-bearing view of a persisted article: every field that
// has ever been able to hold a URL, current or legacy. The extractor walks
// exactly these.
type Article struct {
	PrimaryMedia    *Descriptor  `bson:"primaryMedia,omitempty" json:"primaryMedia,omitempty"`
	SupportingMedia []Descriptor `bson:"supportingMedia,omitempty" json:"supportingMedia,omitempty"`
	Media           *Descriptor  `bson:"media,omitempty" json:"media,omitempty"`
	Images          []string     `bson:"images,omitempty" json:"images,omitempty"`
	ExternalLinks   []string     `bson:"externalLinks,omitempty" json:"externalLinks,omitempty"`
}

// Bool returns a pointer to b, for the optional ShowInMasonry field.
func Bool(b bool) *bool { return &b }
