package media

import (
	"net/url"
	"strings"
)

// NormalizeImageURL reduces a URL to the canonical form used for equality
// checks: scheme://host/path, lowercased, with query string and fragment
// dropped. Input that does not parse as an absolute URL is returned trimmed
// and lowercased so malformed user paste never breaks a normalization pass.
// Idempotent: NormalizeImageURL(NormalizeImageURL(x)) == NormalizeImageURL(x).
func NormalizeImageURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	return strings.ToLower(u.Scheme + "://" + u.Host + u.Path)
}
