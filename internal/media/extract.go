package media

import (
	"fmt"
	"strings"
)

// URLSource identifies which article field a URL was found in.
type URLSource string

const (
	SourceFieldPrimaryMedia    URLSource = "primaryMedia"
	SourceFieldSupportingMedia URLSource = "supportingMedia"
	SourceFieldMedia           URLSource = "media"
	SourceFieldPreviewMetadata URLSource = "mediaPreviewMetadata"
	SourceFieldImages          URLSource = "images"
)

// ExtractedURL is one URL found on an article, tagged with where it came
// from. Index is set for array-backed sources (supportingMedia, images).
type ExtractedURL struct {
	URL          string    `json:"url"`
	Source       URLSource `json:"source"`
	SourceLabel  string    `json:"sourceLabel"`
	Index        int       `json:"index,omitempty"`
	IsCloudinary bool      `json:"isCloudinary"`
}

// ExtractAllURLs walks every media-bearing field an article has ever been
// able to carry and returns a flat, deduplicated list. Sources are visited in
// fixed priority order so the first-seen source wins the label when the same
// URL appears in several fields. A nil article yields an empty slice.
func ExtractAllURLs(a *Article) []ExtractedURL {
	out := []ExtractedURL{}
	if a == nil {
		return out
	}

	seen := make(map[string]struct{})

	add := func(raw string, source URLSource, label string, index int) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return
		}
		key := NormalizeImageURL(trimmed)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, ExtractedURL{
			URL:          trimmed,
			Source:       source,
			SourceLabel:  label,
			Index:        index,
			IsCloudinary: strings.Contains(trimmed, "cloudinary.com"),
		})
	}

	if a.PrimaryMedia != nil {
		add(a.PrimaryMedia.URL, SourceFieldPrimaryMedia, "Primary Media", 0)
	}
	for i, sm := range a.SupportingMedia {
		add(sm.URL, SourceFieldSupportingMedia, fmt.Sprintf("Supporting Media #%d", i+1), i)
	}
	if a.Media != nil {
		add(a.Media.URL, SourceFieldMedia, "Legacy Media", 0)
		if a.Media.PreviewMetadata != nil {
			add(a.Media.PreviewMetadata.URL, SourceFieldPreviewMetadata, "Legacy Preview Metadata", 0)
		}
	}
	for i, img := range a.Images {
		add(img, SourceFieldImages, fmt.Sprintf("Image #%d", i+1), i)
	}

	return out
}

// FilterExistingExternalLinks drops extracted URLs whose normalized form
// already appears in the article's externalLinks list, so the UI never
// re-suggests links the user already promoted.
func FilterExistingExternalLinks(extracted []ExtractedURL, externalLinks []string) []ExtractedURL {
	existing := make(map[string]struct{}, len(externalLinks))
	for _, l := range externalLinks {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			existing[NormalizeImageURL(trimmed)] = struct{}{}
		}
	}

	out := make([]ExtractedURL, 0, len(extracted))
	for _, e := range extracted {
		if _, ok := existing[NormalizeImageURL(e.URL)]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// URLCountsBySource tallies extracted URLs per source field, for diagnostics.
func URLCountsBySource(extracted []ExtractedURL) map[URLSource]int {
	counts := make(map[URLSource]int)
	for _, e := range extracted {
		counts[e.Source]++
	}
	return counts
}
