package media

import "strings"

// DedupLog is one structured entry describing why a URL was dropped or moved
// during deduplication. Entries are for audit logging only.
type DedupLog struct {
	Action     string `json:"action"`
	Reason     string `json:"reason"`
	URL        string `json:"url"`
	KeptURL    string `json:"keptUrl,omitempty"`
	Normalized string `json:"normalized"`
}

// DuplicateKind classifies why two URLs collide under normalization.
type DuplicateKind string

const (
	DuplicateCaseInsensitive DuplicateKind = "case-insensitive"
	DuplicateQueryParams     DuplicateKind = "query-params"
)

// DuplicateEntry pairs a kept URL with a later duplicate of it.
type DuplicateEntry struct {
	Kind       DuplicateKind `json:"type"`
	Original   string        `json:"original"`
	Duplicate  string        `json:"duplicate"`
	Normalized string        `json:"normalized"`
}

// DuplicateReport is the read-only output of DetectDuplicateImages.
type DuplicateReport struct {
	Duplicates      []DuplicateEntry    `json:"duplicates"`
	NormalizedPairs map[string][]string `json:"normalizedPairs"`
}

// DetectDuplicateImages classifies why URLs in a list collide without
// mutating anything: two URLs that are equal ignoring case differ only in
// casing; otherwise the collision comes from query params or fragments.
func DetectDuplicateImages(images []string) DuplicateReport {
	report := DuplicateReport{
		Duplicates:      []DuplicateEntry{},
		NormalizedPairs: make(map[string][]string),
	}

	firstSeen := make(map[string]string)

	for _, img := range images {
		trimmed := strings.TrimSpace(img)
		if trimmed == "" {
			continue
		}
		key := NormalizeImageURL(trimmed)
		report.NormalizedPairs[key] = append(report.NormalizedPairs[key], trimmed)

		original, ok := firstSeen[key]
		if !ok {
			firstSeen[key] = trimmed
			continue
		}

		kind := DuplicateQueryParams
		if strings.EqualFold(original, trimmed) {
			kind = DuplicateCaseInsensitive
		}
		report.Duplicates = append(report.Duplicates, DuplicateEntry{
			Kind:       kind,
			Original:   original,
			Duplicate:  trimmed,
			Normalized: key,
		})
	}

	return report
}

// CreateDedupResult is the output of DedupeImagesForCreate.
type CreateDedupResult struct {
	Deduplicated []string   `json:"deduplicated"`
	Removed      []string   `json:"removed"`
	Logs         []DedupLog `json:"logs"`
}

// DedupeImagesForCreate collapses a flat candidate list to unique image URLs.
// Blank entries are dropped, equality is NormalizeImageURL-based, the first
// occurrence keeps its original casing, and output order follows first
// occurrence.
func DedupeImagesForCreate(images []string) CreateDedupResult {
	result := CreateDedupResult{
		Deduplicated: []string{},
		Removed:      []string{},
		Logs:         []DedupLog{},
	}

	kept := make(map[string]string)

	for _, img := range images {
		trimmed := strings.TrimSpace(img)
		if trimmed == "" {
			continue
		}
		key := NormalizeImageURL(trimmed)
		if keptURL, ok := kept[key]; ok {
			result.Removed = append(result.Removed, trimmed)
			result.Logs = append(result.Logs, DedupLog{
				Action:     "removed",
				Reason:     "duplicate",
				URL:        trimmed,
				KeptURL:    keptURL,
				Normalized: key,
			})
			continue
		}
		kept[key] = trimmed
		result.Deduplicated = append(result.Deduplicated, trimmed)
	}

	return result
}

// EditDedupResult is the output of DedupeImagesForEdit.
type EditDedupResult struct {
	Deduplicated      []string   `json:"deduplicated"`
	Removed           []string   `json:"removed"`
	MovedToSupporting []string   `json:"movedToSupporting"`
	Logs              []DedupLog `json:"logs"`
}

// DedupeImagesForEdit merges the images already persisted on an article with
// newly added ones. Existing images are never silently dropped; they only go
// away when they duplicate each other. New images are additionally reconciled
// against supportingMedia: a new image whose normalized URL matches an
// image-type supporting entry was already placed as a tile by the user, so it
// is reported in MovedToSupporting instead of joining the top-level list.
// Non-image supporting entries are ignored for that check even on a URL match.
func DedupeImagesForEdit(existingImages, newImages []string, supportingMedia []Descriptor) EditDedupResult {
	result := EditDedupResult{
		Deduplicated:      []string{},
		Removed:           []string{},
		MovedToSupporting: []string{},
		Logs:              []DedupLog{},
	}

	supporting := make(map[string]struct{})
	for _, sm := range supportingMedia {
		if sm.Type != TypeImage {
			continue
		}
		if trimmed := strings.TrimSpace(sm.URL); trimmed != "" {
			supporting[NormalizeImageURL(trimmed)] = struct{}{}
		}
	}

	kept := make(map[string]string)

	keep := func(trimmed, key string) {
		kept[key] = trimmed
		result.Deduplicated = append(result.Deduplicated, trimmed)
	}

	remove := func(trimmed, key, keptURL string) {
		result.Removed = append(result.Removed, trimmed)
		result.Logs = append(result.Logs, DedupLog{
			Action:     "removed",
			Reason:     "duplicate",
			URL:        trimmed,
			KeptURL:    keptURL,
			Normalized: key,
		})
	}

	for _, img := range existingImages {
		trimmed := strings.TrimSpace(img)
		if trimmed == "" {
			continue
		}
		key := NormalizeImageURL(trimmed)
		if keptURL, ok := kept[key]; ok {
			remove(trimmed, key, keptURL)
			continue
		}
		keep(trimmed, key)
	}

	for _, img := range newImages {
		trimmed := strings.TrimSpace(img)
		if trimmed == "" {
			continue
		}
		key := NormalizeImageURL(trimmed)
		if _, ok := supporting[key]; ok {
			result.MovedToSupporting = append(result.MovedToSupporting, trimmed)
			result.Logs = append(result.Logs, DedupLog{
				Action:     "moved",
				Reason:     "already-in-supporting-media",
				URL:        trimmed,
				Normalized: key,
			})
			continue
		}
		if keptURL, ok := kept[key]; ok {
			remove(trimmed, key, keptURL)
			continue
		}
		keep(trimmed, key)
	}

	return result
}
