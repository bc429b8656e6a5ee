package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeImagesForCreate(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		result := DedupeImagesForCreate([]string{
			"https://example.com/a.jpg",
			"HTTPS://EXAMPLE.COM/A.JPG",
		})

		require.Len(t, result.Deduplicated, 1)
		assert.Equal(t, "https://example.com/a.jpg", result.Deduplicated[0], "first occurrence keeps its casing")
		assert.Equal(t, []string{"HTTPS://EXAMPLE.COM/A.JPG"}, result.Removed)
	})

	t.Run("query params insensitive", func(t *testing.T) {
		result := DedupeImagesForCreate([]string{
			"https://example.com/a.jpg",
			"https://example.com/a.jpg?x=1",
		})

		require.Len(t, result.Deduplicated, 1)
		assert.Len(t, result.Removed, 1)
	})

	t.Run("blank entries dropped silently", func(t *testing.T) {
		result := DedupeImagesForCreate([]string{"", "  ", "https://example.com/a.jpg"})

		assert.Equal(t, []string{"https://example.com/a.jpg"}, result.Deduplicated)
		assert.Empty(t, result.Removed)
	})

	t.Run("order follows first occurrence", func(t *testing.T) {
		result := DedupeImagesForCreate([]string{
			"https://example.com/b.jpg",
			"https://example.com/a.jpg",
			"https://example.com/B.JPG",
			"https://example.com/c.jpg",
		})

		assert.Equal(t, []string{
			"https://example.com/b.jpg",
			"https://example.com/a.jpg",
			"https://example.com/c.jpg",
		}, result.Deduplicated)
	})

	t.Run("removal is logged", func(t *testing.T) {
		result := DedupeImagesForCreate([]string{
			"https://example.com/a.jpg",
			"https://example.com/A.JPG",
		})

		require.Len(t, result.Logs, 1)
		assert.Equal(t, "removed", result.Logs[0].Action)
		assert.Equal(t, "duplicate", result.Logs[0].Reason)
		assert.Equal(t, "https://example.com/A.JPG", result.Logs[0].URL)
		assert.Equal(t, "https://example.com/a.jpg", result.Logs[0].KeptURL)
	})
}

func TestDedupeImagesForEdit(t *testing.T) {
	t.Run("no overlap keeps everything", func(t *testing.T) {
		existing := []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}
		added := []string{"https://example.com/c.jpg", "https://example.com/d.jpg"}

		result := DedupeImagesForEdit(existing, added, nil)

		assert.Equal(t, []string{
			"https://example.com/a.jpg",
			"https://example.com/b.jpg",
			"https://example.com/c.jpg",
			"https://example.com/d.jpg",
		}, result.Deduplicated)
		assert.Empty(t, result.Removed)
		assert.Empty(t, result.MovedToSupporting)
	})

	t.Run("new duplicate of existing is removed", func(t *testing.T) {
		existing := []string{"https://example.com/a.jpg"}
		added := []string{"https://example.com/A.JPG?v=2"}

		result := DedupeImagesForEdit(existing, added, nil)

		assert.Equal(t, []string{"https://example.com/a.jpg"}, result.Deduplicated)
		assert.Equal(t, []string{"https://example.com/A.JPG?v=2"}, result.Removed)
	})

	t.Run("new image already placed in supporting media is moved not added", func(t *testing.T) {
		supporting := []Descriptor{
			{Type: TypeImage, URL: "https://example.com/Tile.JPG"},
		}
		added := []string{"https://example.com/tile.jpg"}

		result := DedupeImagesForEdit(nil, added, supporting)

		assert.Empty(t, result.Deduplicated)
		assert.Equal(t, []string{"https://example.com/tile.jpg"}, result.MovedToSupporting)
	})

	t.Run("non-image supporting entries are ignored even on url match", func(t *testing.T) {
		supporting := []Descriptor{
			{Type: TypeLink, URL: "https://example.com/shared.jpg"},
		}
		added := []string{"https://example.com/shared.jpg"}

		result := DedupeImagesForEdit(nil, added, supporting)

		assert.Equal(t, []string{"https://example.com/shared.jpg"}, result.Deduplicated)
		assert.Empty(t, result.MovedToSupporting)
	})

	t.Run("existing images survive a supporting media match", func(t *testing.T) {
		// The promotion rule only applies to newly added images.
		supporting := []Descriptor{
			{Type: TypeImage, URL: "https://example.com/old.jpg"},
		}
		existing := []string{"https://example.com/old.jpg"}

		result := DedupeImagesForEdit(existing, nil, supporting)

		assert.Equal(t, []string{"https://example.com/old.jpg"}, result.Deduplicated)
		assert.Empty(t, result.MovedToSupporting)
	})

	t.Run("existing duplicates collapse", func(t *testing.T) {
		existing := []string{
			"https://example.com/a.jpg",
			"https://example.com/a.jpg?size=large",
		}

		result := DedupeImagesForEdit(existing, nil, nil)

		assert.Equal(t, []string{"https://example.com/a.jpg"}, result.Deduplicated)
		assert.Len(t, result.Removed, 1)
	})
}

func TestDetectDuplicateImages(t *testing.T) {
	t.Run("classifies case collisions", func(t *testing.T) {
		report := DetectDuplicateImages([]string{
			"https://example.com/a.jpg",
			"https://example.com/A.JPG",
		})

		require.Len(t, report.Duplicates, 1)
		assert.Equal(t, DuplicateCaseInsensitive, report.Duplicates[0].Kind)
	})

	t.Run("classifies query param collisions", func(t *testing.T) {
		report := DetectDuplicateImages([]string{
			"https://example.com/a.jpg",
			"https://example.com/a.jpg?w=600",
		})

		require.Len(t, report.Duplicates, 1)
		assert.Equal(t, DuplicateQueryParams, report.Duplicates[0].Kind)
	})

	t.Run("no duplicates", func(t *testing.T) {
		report := DetectDuplicateImages([]string{
			"https://example.com/a.jpg",
			"https://example.com/b.jpg",
		})

		assert.Empty(t, report.Duplicates)
		assert.Len(t, report.NormalizedPairs, 2)
	})
}
