package nugget

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"nuggets/internal/media"
)

// Mode selects create or edit semantics for a normalization pass.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

const (
	wordsPerMinute    = 200
	excerptLimit      = 150
	masonryTitleLimit = 80
)

// ArticleInput is the raw material of one form submission: heterogeneous,
// redundantly specified, straight from the UI.
type ArticleInput struct {
	Title             string              `json:"title"`
	Content           string              `json:"content"`
	Categories        []string            `json:"categories"`
	Visibility        Visibility          `json:"visibility"`
	URLs              []string            `json:"urls"`
	DetectedLink      string              `json:"detectedLink,omitempty"`
	LinkMetadata      *media.Descriptor   `json:"linkMetadata,omitempty"`
	ImageURLs         []string            `json:"imageUrls"`
	UploadedImageURLs []string            `json:"uploadedImageUrls"`
	MediaIDs          []string            `json:"mediaIds"`
	UploadedDocs      []media.Document    `json:"uploadedDocs,omitempty"`
	CustomDomain      string              `json:"customDomain,omitempty"`
	MasonryMediaItems []media.MasonryItem `json:"masonryMediaItems,omitempty"`
	CustomCreatedAt   string              `json:"customCreatedAt,omitempty"`
	IsAdmin           bool                `json:"isAdmin,omitempty"`

	// Edit mode only: the previously persisted state being merged into.
	ExistingImages          []string           `json:"existingImages,omitempty"`
	ExistingMediaIDs        []string           `json:"existingMediaIds,omitempty"`
	ExistingSupportingMedia []media.Descriptor `json:"existingSupportingMedia,omitempty"`
}

// NormalizedArticleInput is the canonical article payload the pipeline emits,
// persisted downstream as-is.
type NormalizedArticleInput struct {
	Title             string             `bson:"title" json:"title"`
	Content           string             `bson:"content" json:"content"`
	Excerpt           string             `bson:"excerpt" json:"excerpt"`
	ReadTime          int                `bson:"readTime" json:"readTime"`
	Categories        []string           `bson:"categories" json:"categories"`
	Tags              []string           `bson:"tags" json:"tags"`
	Visibility        Visibility         `bson:"visibility" json:"visibility"`
	Images            []string           `bson:"images,omitempty" json:"images,omitempty"`
	MediaIDs          []string           `bson:"mediaIds,omitempty" json:"mediaIds,omitempty"`
	Documents         []media.Document   `bson:"documents,omitempty" json:"documents,omitempty"`
	Media             *media.Descriptor  `bson:"media" json:"media"`
	SupportingMedia   []media.Descriptor `bson:"supportingMedia,omitempty" json:"supportingMedia,omitempty"`
	SourceType        SourceType         `bson:"source_type" json:"source_type"`
	CustomCreatedAt   string             `bson:"customCreatedAt,omitempty" json:"customCreatedAt,omitempty"`
	HasEmptyTagsError bool               `bson:"-" json:"hasEmptyTagsError"`
}

// Enricher fetches link-preview metadata for one media item. Implementations
// are expected to be total: on any fetch failure they return the draft
// unchanged rather than an error. An error, if one does occur, propagates out
// of Normalize uncaught.
type Enricher interface {
	Enrich(ctx context.Context, item media.Descriptor) (media.Descriptor, error)
}

// Normalizer reduces raw article input to the canonical normalized payload.
type Normalizer struct {
	enricher Enricher
	logger   *log.Logger
}

func NewNormalizer(enricher Enricher, logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{
		enricher: enricher,
		logger:   logger,
	}
}

// Normalize runs the full pipeline over one submission. It is a total
// transformation: empty content, zero tags, or no media at all degrade to the
// pure-text nugget shape rather than failing.
func (n *Normalizer) Normalize(ctx context.Context, in ArticleInput, mode Mode) (NormalizedArticleInput, error) {
	out := NormalizedArticleInput{
		Title:      in.Title,
		Content:    in.Content,
		Visibility: in.Visibility,
		Documents:  in.UploadedDocs,
	}

	out.ReadTime = readTime(in.Content)
	out.Excerpt = excerpt(in.Content, in.Title)

	tags := filterTags(in.Categories)
	out.Categories = tags
	out.Tags = dedupeTags(tags)
	// Missing-tags validation belongs to the create flow; edit-time tag
	// validation happens elsewhere, so edit mode always reports false.
	out.HasEmptyTagsError = mode == ModeCreate && len(out.Tags) == 0

	imageURLs, linkURLs := partitionURLs(in.URLs)

	out.Images = n.resolveImages(in, mode, imageURLs)
	out.MediaIDs = resolveMediaIDs(in, mode)

	primaryURL := firstNonEmpty(linkURLs)
	if primaryURL == "" {
		primaryURL = strings.TrimSpace(in.DetectedLink)
	}

	primaryMasonry := findPrimaryMasonryItem(in.MasonryMediaItems)
	out.Media = resolvePrimaryMedia(in, primaryURL, primaryMasonry)
	applyMasonryDefaults(out.Media, primaryMasonry)

	supporting, err := n.resolveSupportingMedia(ctx, in.MasonryMediaItems)
	if err != nil {
		return NormalizedArticleInput{}, err
	}
	out.SupportingMedia = supporting

	out.SourceType = SourceTypeText
	if primaryURL != "" || len(imageURLs) > 0 {
		out.SourceType = SourceTypeLink
	}

	if in.IsAdmin {
		out.CustomCreatedAt = parseCustomCreatedAt(in.CustomCreatedAt)
	}

	return out, nil
}

// readTime estimates minutes to read at 200 words per minute, never below 1.
func readTime(content string) int {
	words := len(strings.Fields(content))
	rt := (words + wordsPerMinute - 1) / wordsPerMinute
	if rt < 1 {
		rt = 1
	}
	return rt
}

// excerpt truncates trimmed content (or the title, when content is empty) to
// 150 characters with a trailing ellipsis.
func excerpt(content, title string) string {
	text := strings.TrimSpace(content)
	if text == "" {
		text = title
	}
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "..."
}

func filterTags(categories []string) []string {
	out := []string{}
	for _, c := range categories {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, t := range tags {
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func partitionURLs(urls []string) (imageURLs, linkURLs []string) {
	for _, u := range urls {
		trimmed := strings.TrimSpace(u)
		if trimmed == "" {
			continue
		}
		if media.DetectProvider(trimmed) == media.TypeImage {
			imageURLs = append(imageURLs, trimmed)
		} else {
			linkURLs = append(linkURLs, trimmed)
		}
	}
	return imageURLs, linkURLs
}

func (n *Normalizer) resolveImages(in ArticleInput, mode Mode, imageURLs []string) []string {
	candidates := append([]string{}, imageURLs...)
	candidates = append(candidates, in.ImageURLs...)
	candidates = append(candidates, in.UploadedImageURLs...)

	if mode == ModeEdit {
		result := media.DedupeImagesForEdit(in.ExistingImages, candidates, in.ExistingSupportingMedia)
		if len(result.Removed) > 0 || len(result.MovedToSupporting) > 0 {
			n.logger.Printf("image dedup (edit): %d removed, %d moved to supporting media",
				len(result.Removed), len(result.MovedToSupporting))
		}
		return result.Deduplicated
	}

	result := media.DedupeImagesForCreate(candidates)
	if len(result.Removed) > 0 {
		n.logger.Printf("image dedup (create): %d removed", len(result.Removed))
	}
	return result.Deduplicated
}

func resolveMediaIDs(in ArticleInput, mode Mode) []string {
	if mode != ModeEdit {
		return in.MediaIDs
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, id := range append(append([]string{}, in.ExistingMediaIDs...), in.MediaIDs...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func findPrimaryMasonryItem(items []media.MasonryItem) *media.MasonryItem {
	for i := range items {
		if items[i].Source == media.SourcePrimary {
			return &items[i]
		}
	}
	return nil
}

// resolvePrimaryMedia walks the priority chain: enriched link metadata, then
// a pasted/detected URL, then a customDomain source badge, then the masonry
// item tagged primary (pure-upload flows with no URL at all), then nothing.
func resolvePrimaryMedia(in ArticleInput, primaryURL string, primaryMasonry *media.MasonryItem) *media.Descriptor {
	var primary *media.Descriptor

	switch {
	case in.LinkMetadata != nil:
		d := *in.LinkMetadata
		primary = &d
	case primaryURL != "":
		primary = &media.Descriptor{
			Type: media.DetectProvider(primaryURL),
			URL:  primaryURL,
		}
	case in.CustomDomain != "":
		primary = &media.Descriptor{
			Type:            media.TypeLink,
			PreviewMetadata: &media.PreviewMetadata{SiteName: in.CustomDomain},
		}
	case primaryMasonry != nil:
		primary = &media.Descriptor{
			Type:            primaryMasonry.Type,
			URL:             primaryMasonry.URL,
			Thumbnail:       primaryMasonry.Thumbnail,
			PreviewMetadata: primaryMasonry.PreviewMetadata,
		}
	default:
		return nil
	}

	// The user's explicit domain label beats scraped metadata. Copy the
	// metadata before writing: the pointer may still be shared with the
	// caller's input, which must come through the pass untouched.
	if in.CustomDomain != "" {
		pm := media.PreviewMetadata{}
		if primary.PreviewMetadata != nil {
			pm = *primary.PreviewMetadata
		}
		pm.SiteName = in.CustomDomain
		primary.PreviewMetadata = &pm
	}

	return primary
}

// applyMasonryDefaults resolves the primary item's masonry visibility: an
// explicit primary masonry item wins; otherwise primary media is visible in
// masonry layouts by default.
func applyMasonryDefaults(primary *media.Descriptor, primaryMasonry *media.MasonryItem) {
	if primary == nil {
		return
	}
	if primaryMasonry != nil {
		primary.ShowInMasonry = media.Bool(primaryMasonry.ShowInMasonry)
		if primaryMasonry.MasonryTitle != "" {
			primary.MasonryTitle = sanitizeMasonryTitle(primaryMasonry.MasonryTitle)
		}
		return
	}
	if primary.ShowInMasonry == nil {
		primary.ShowInMasonry = media.Bool(true)
	}
}

// resolveSupportingMedia builds descriptors for every non-primary masonry
// tile the user kept visible and enriches them all concurrently. Items that
// still lack preview metadata afterwards get a synthesized minimal one, so
// masonry rendering never has to null-check.
func (n *Normalizer) resolveSupportingMedia(ctx context.Context, items []media.MasonryItem) ([]media.Descriptor, error) {
	var drafts []media.Descriptor
	for _, it := range items {
		if it.Source == media.SourcePrimary || !it.ShowInMasonry {
			continue
		}
		d := media.Descriptor{
			Type:            it.Type,
			URL:             it.URL,
			Thumbnail:       it.Thumbnail,
			PreviewMetadata: it.PreviewMetadata,
			ShowInMasonry:   media.Bool(true),
			MasonryTitle:    sanitizeMasonryTitle(it.MasonryTitle),
		}
		if d.Type == media.TypeImage && d.Thumbnail == "" {
			d.Thumbnail = d.URL
		}
		drafts = append(drafts, d)
	}

	if len(drafts) == 0 {
		return nil, nil
	}

	if n.enricher != nil {
		var wg sync.WaitGroup
		errs := make([]error, len(drafts))

		for i := range drafts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				enriched, err := n.enricher.Enrich(ctx, drafts[i])
				if err != nil {
					errs[i] = err
					return
				}
				drafts[i] = enriched
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	for i := range drafts {
		if drafts[i].PreviewMetadata != nil {
			continue
		}
		pm := &media.PreviewMetadata{
			URL:       drafts[i].URL,
			MediaType: drafts[i].Type,
		}
		if drafts[i].Type == media.TypeImage {
			pm.ImageURL = drafts[i].URL
		}
		drafts[i].PreviewMetadata = pm
	}

	return drafts, nil
}

// sanitizeMasonryTitle enforces the tile-title constraints: single line, at
// most 80 characters.
func sanitizeMasonryTitle(title string) string {
	title = strings.Join(strings.FieldsFunc(title, func(r rune) bool {
		return r == '\n' || r == '\r'
	}), " ")
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) > masonryTitleLimit {
		return strings.TrimSpace(string(runes[:masonryTitleLimit]))
	}
	return title
}

func firstNonEmpty(urls []string) string {
	for _, u := range urls {
		if u != "" {
			return u
		}
	}
	return ""
}

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseCustomCreatedAt converts an admin-supplied timestamp to RFC 3339.
// Unparseable input is dropped rather than failing the pass.
func parseCustomCreatedAt(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}
