package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectProvider(t *testing.T) {
	cases := []struct {
		url  string
		want Type
	}{
		// images by extension
		{"https://example.com/photo.jpg", TypeImage},
		{"https://example.com/photo.jpeg", TypeImage},
		{"https://example.com/photo.png", TypeImage},
		{"https://example.com/anim.gif", TypeImage},
		{"https://example.com/pic.webp", TypeImage},
		// youtube
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", TypeYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", TypeYouTube},
		{"https://m.youtube.com/watch?v=abc", TypeYouTube},
		// lookalike hosts stay plain links
		{"https://notyoutube.com/watch?v=abc", TypeLink},
		{"https://fakeyoutu.be/abc", TypeLink},
		// video
		{"https://example.com/clip.mp4", TypeVideo},
		{"https://example.com/clip.webm", TypeVideo},
		{"https://example.com/clip.ogg", TypeVideo},
		// documents
		{"https://example.com/paper.pdf", TypeDocument},
		{"https://example.com/report.docx", TypeDocument},
		{"https://example.com/sheet.xlsx", TypeDocument},
		{"https://example.com/deck.pptx", TypeDocument},
		// links
		{"https://example.com/article", TypeLink},
		{"https://news.example.com/2024/story.html", TypeLink},
		{"", TypeLink},
		{"   ", TypeLink},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectProvider(tc.url))
		})
	}
}

func TestIsImageURL_SocialCDNs(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"twitter media", "https://pbs.twimg.com/media/F1abcdef?format=jpg&name=large", true},
		{"twitter status page", "https://twitter.com/user/status/123", false},
		{"linkedin image", "https://media.licdn.com/dms/image/C4D03AQE/photo", true},
		{"reddit direct", "https://i.redd.it/abc123", true},
		{"reddit preview", "https://preview.redd.it/abc123", true},
		{"imgur direct", "https://i.imgur.com/abc123", true},
		{"contentful with format hint", "https://images.ctfassets.net/space/asset?fm=webp&q=80", true},
		{"generic cdn html page", "https://cdn.example.com/landing.html", false},
		{"generic cdn bare asset path", "https://cdn.example.com/assets/hero", true},
		{"format query on media path", "https://example.com/media/12345?format=png", true},
		{"format query on plain path", "https://example.com/watch?format=png", false},
		{"plain article", "https://example.com/some-article", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsImageURL(tc.url))
		})
	}
}

func TestShouldFetchMetadata(t *testing.T) {
	assert.True(t, ShouldFetchMetadata("https://www.youtube.com/watch?v=abc"))
	assert.True(t, ShouldFetchMetadata("https://youtu.be/abc"))

	// Images never warrant an unfurl round-trip.
	assert.False(t, ShouldFetchMetadata("https://example.com/photo.jpg"))
	assert.False(t, ShouldFetchMetadata("https://i.imgur.com/abc123"))

	assert.False(t, ShouldFetchMetadata("https://example.com/article"))
	assert.False(t, ShouldFetchMetadata(""))
}

func TestShouldAutoGenerateTitle(t *testing.T) {
	assert.True(t, ShouldAutoGenerateTitle("https://www.facebook.com/somebody/posts/123"))
	assert.True(t, ShouldAutoGenerateTitle("https://www.threads.net/@somebody/post/abc"))
	assert.True(t, ShouldAutoGenerateTitle("https://www.reddit.com/r/golang/comments/abc"))
	assert.True(t, ShouldAutoGenerateTitle("https://youtu.be/abc"))
	assert.True(t, ShouldAutoGenerateTitle("https://vimeo.com/12345"))

	assert.False(t, ShouldAutoGenerateTitle("https://example.com/article"))
	assert.False(t, ShouldAutoGenerateTitle("https://notreddit.com/r/golang"))
	assert.False(t, ShouldAutoGenerateTitle(""))
}
