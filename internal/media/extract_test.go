package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAllURLs(t *testing.T) {
	t.Run("nil article", func(t *testing.T) {
		assert.Empty(t, ExtractAllURLs(nil))
	})

	t.Run("distinct urls in every source field", func(t *testing.T) {
		a := &Article{
			PrimaryMedia: &Descriptor{Type: TypeLink, URL: "https://example.com/primary"},
			SupportingMedia: []Descriptor{
				{Type: TypeImage, URL: "https://example.com/supporting.jpg"},
			},
			Media: &Descriptor{
				Type: TypeLink,
				URL:  "https://example.com/legacy",
				PreviewMetadata: &PreviewMetadata{
					URL: "https://example.com/preview",
				},
			},
			Images: []string{"https://example.com/image.png"},
		}

		extracted := ExtractAllURLs(a)
		require.Len(t, extracted, 5)

		assert.Equal(t, SourceFieldPrimaryMedia, extracted[0].Source)
		assert.Equal(t, SourceFieldSupportingMedia, extracted[1].Source)
		assert.Equal(t, SourceFieldMedia, extracted[2].Source)
		assert.Equal(t, SourceFieldPreviewMetadata, extracted[3].Source)
		assert.Equal(t, SourceFieldImages, extracted[4].Source)
	})

	t.Run("priority order wins the label on duplicates", func(t *testing.T) {
		a := &Article{
			PrimaryMedia: &Descriptor{Type: TypeImage, URL: "https://example.com/hero.jpg"},
			Images:       []string{"https://example.com/HERO.JPG"},
		}

		extracted := ExtractAllURLs(a)
		require.Len(t, extracted, 1)
		assert.Equal(t, SourceFieldPrimaryMedia, extracted[0].Source)
		assert.Equal(t, "https://example.com/hero.jpg", extracted[0].URL)
	})

	t.Run("indexes for array sources", func(t *testing.T) {
		a := &Article{
			SupportingMedia: []Descriptor{
				{Type: TypeImage, URL: "https://example.com/s0.jpg"},
				{Type: TypeImage, URL: "https://example.com/s1.jpg"},
			},
			Images: []string{"https://example.com/i0.png", "https://example.com/i1.png"},
		}

		extracted := ExtractAllURLs(a)
		require.Len(t, extracted, 4)
		assert.Equal(t, 1, extracted[1].Index)
		assert.Equal(t, "Supporting Media #2", extracted[1].SourceLabel)
		assert.Equal(t, "Image #2", extracted[3].SourceLabel)
	})

	t.Run("cloudinary flag", func(t *testing.T) {
		a := &Article{
			Images: []string{
				"https://res.cloudinary.com/demo/image/upload/a.jpg",
				"https://example.com/b.jpg",
			},
		}

		extracted := ExtractAllURLs(a)
		require.Len(t, extracted, 2)
		assert.True(t, extracted[0].IsCloudinary)
		assert.False(t, extracted[1].IsCloudinary)
	})

	t.Run("blank urls skipped", func(t *testing.T) {
		a := &Article{
			PrimaryMedia: &Descriptor{Type: TypeLink, URL: "   "},
			Images:       []string{"", "https://example.com/a.jpg"},
		}

		extracted := ExtractAllURLs(a)
		require.Len(t, extracted, 1)
		assert.Equal(t, SourceFieldImages, extracted[0].Source)
	})
}

func TestFilterExistingExternalLinks(t *testing.T) {
	extracted := []ExtractedURL{
		{URL: "https://example.com/kept"},
		{URL: "https://example.com/Promoted"},
	}

	filtered := FilterExistingExternalLinks(extracted, []string{"https://example.com/promoted?utm=1"})

	require.Len(t, filtered, 1)
	assert.Equal(t, "https://example.com/kept", filtered[0].URL)
}

func TestURLCountsBySource(t *testing.T) {
	a := &Article{
		PrimaryMedia: &Descriptor{Type: TypeLink, URL: "https://example.com/p"},
		Images:       []string{"https://example.com/a.jpg", "https://example.com/b.jpg"},
	}

	counts := URLCountsBySource(ExtractAllURLs(a))

	assert.Equal(t, 1, counts[SourceFieldPrimaryMedia])
	assert.Equal(t, 2, counts[SourceFieldImages])
	assert.Zero(t, counts[SourceFieldSupportingMedia])
}
