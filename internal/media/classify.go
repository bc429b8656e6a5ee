package media

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".avif"}

var videoExtensions = []string{".mp4", ".webm", ".ogg"}

var documentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}

// pageExtensions mark paths that are almost certainly HTML, even when served
// from a CDN-looking hostname.
var pageExtensions = []string{".html", ".htm", ".php", ".asp", ".aspx", ".jsp"}

// cdnMarkers are hostname fragments that suggest an asset CDN rather than a
// regular web page host.
var cdnMarkers = []string{"cdn.", "img.", "image.", "thumbs.", "images.ctfassets.net"}

// mediaPathSegments mark URL paths that carry media even without a file
// extension, used together with a format= query hint.
var mediaPathSegments = []string{"/media/", "/image/", "/photo/", "/pic/", "/img/"}

// DetectProvider classifies a URL as image, video, document, youtube or link.
// Empty input and anything unrecognized fall through to link; the function
// never fails.
func DetectProvider(raw string) Type {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TypeLink
	}

	lower := strings.ToLower(trimmed)
	host := hostOf(lower)

	if hostMatches(host, "youtube.com") || hostMatches(host, "youtu.be") {
		return TypeYouTube
	}

	if IsImageURL(trimmed) {
		return TypeImage
	}

	p := pathOf(lower)
	if hasAnyExtension(p, videoExtensions) {
		return TypeVideo
	}
	if hasAnyExtension(p, documentExtensions) {
		return TypeDocument
	}

	return TypeLink
}

// IsImageURL reports whether a URL points at an image. Extension checks alone
// miss the rewritten URLs social platforms serve from their CDNs, so this
// layers known-CDN hostnames and query-string hints on top; the CDN layers
// demand a corroborating signal so HTML pages on cdn.* subdomains are not
// swept up.
func IsImageURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	host := hostOf(lower)
	p := pathOf(lower)
	q := queryOf(lower)

	// Plain extension match.
	if hasAnyExtension(p, imageExtensions) {
		return true
	}

	// Known social-media image CDNs.
	switch {
	case host == "pbs.twimg.com" && strings.Contains(p, "/media/"):
		return true
	case host == "media.licdn.com" && strings.Contains(p, "/image/"):
		return true
	case host == "i.redd.it" || host == "preview.redd.it":
		return true
	case host == "i.imgur.com":
		return true
	}

	// Generic CDN hostname plus an image-format query hint or a path that
	// does not look like an HTML page.
	if hasCDNMarker(host) {
		if q.Has("fm") || q.Has("q") || q.Has("format") {
			return true
		}
		if p != "" && p != "/" && !hasAnyExtension(p, pageExtensions) && path.Ext(p) == "" {
			return true
		}
	}

	// format=<imageext> on a media-like path.
	if format := q.Get("format"); format != "" {
		for _, ext := range imageExtensions {
			if "."+format == ext {
				for _, seg := range mediaPathSegments {
					if strings.Contains(p, seg) {
						return true
					}
				}
			}
		}
	}

	return false
}

// ShouldFetchMetadata reports whether a URL is worth an unfurl round-trip.
// Only YouTube qualifies: its oEmbed metadata is rich and reliably available,
// while generic pages risk paywalls and latency. Images never qualify.
func ShouldFetchMetadata(raw string) bool {
	return DetectProvider(raw) == TypeYouTube
}

// autoTitleHosts is the social-host vocabulary for auto-title generation.
// Deliberately independent of DetectProvider's categories.
var autoTitleHosts = []string{"facebook.com", "threads.net", "reddit.com", "youtube.com", "youtu.be", "vimeo.com"}

// ShouldAutoGenerateTitle reports whether a URL's host warrants synthesizing
// a title when the user supplied none.
func ShouldAutoGenerateTitle(raw string) bool {
	host := hostOf(strings.ToLower(strings.TrimSpace(raw)))
	for _, h := range autoTitleHosts {
		if hostMatches(host, h) {
			return true
		}
	}
	return false
}

// hostMatches reports whether host is the domain itself or a subdomain of
// it. Substring checks would also catch hosts that merely end in the domain's
// characters (notyoutube.com).
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func hostOf(lower string) string {
	if u, err := url.Parse(lower); err == nil && u.Host != "" {
		return u.Host
	}
	return ""
}

func pathOf(lower string) string {
	if u, err := url.Parse(lower); err == nil && u.Host != "" {
		return u.Path
	}
	// Malformed or relative input: best effort, strip query and fragment.
	p := lower
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

func queryOf(lower string) url.Values {
	if u, err := url.Parse(lower); err == nil {
		return u.Query()
	}
	return url.Values{}
}

func hasAnyExtension(p string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func hasCDNMarker(host string) bool {
	for _, m := range cdnMarkers {
		if strings.Contains(host, m) {
			return true
		}
	}
	return false
}
