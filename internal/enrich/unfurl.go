package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/purell"
	readability "github.com/go-shiori/go-readability"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/html"

	"nuggets/internal/media"
)

const (
	// CacheTTL bounds how long an unfurl result is reused before the page is
	// fetched again.
	CacheTTL = 24 * time.Hour

	cacheKeyPrefix = "unfurl:"
	maxBodyBytes   = 512 * 1024
)

// Unfurler fetches link-preview metadata for media items. It is total by
// contract: any fetch or parse failure returns the draft item unchanged,
// never an error, so the normalization pass stays deterministic.
type Unfurler struct {
	http   *http.Client
	cache  *redis.Client // nil disables caching
	logger *log.Logger
}

func NewUnfurler(httpClient *http.Client, cache *redis.Client, logger *log.Logger) *Unfurler {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Unfurler{
		http:   httpClient,
		cache:  cache,
		logger: logger,
	}
}

// Enrich attaches preview metadata to a media item when it can. Items that
// already carry metadata, carry no URL, or are not worth an unfurl
// round-trip pass through untouched.
func (u *Unfurler) Enrich(ctx context.Context, item media.Descriptor) (media.Descriptor, error) {
	if item.PreviewMetadata != nil || strings.TrimSpace(item.URL) == "" {
		return item, nil
	}

	if item.Type != media.TypeYouTube && item.Type != media.TypeLink {
		return item, nil
	}

	key := cacheKey(item.URL)

	if pm := u.cacheGet(ctx, key); pm != nil {
		item.PreviewMetadata = pm
		return item, nil
	}

	var pm *media.PreviewMetadata
	if item.Type == media.TypeYouTube {
		pm = u.fetchOEmbed(ctx, item.URL)
	} else {
		pm = u.fetchPage(ctx, item.URL)
	}
	if pm == nil {
		return item, nil
	}

	u.cacheSet(ctx, key, pm)
	item.PreviewMetadata = pm
	return item, nil
}

// cacheKey canonicalizes the URL so trivially different spellings share one
// cache entry.
func cacheKey(raw string) string {
	canonical, err := purell.NormalizeURLString(strings.TrimSpace(raw), purell.FlagsSafe)
	if err != nil {
		canonical = strings.TrimSpace(raw)
	}
	return cacheKeyPrefix + canonical
}

func (u *Unfurler) cacheGet(ctx context.Context, key string) *media.PreviewMetadata {
	if u.cache == nil {
		return nil
	}
	data, err := u.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	pm := &media.PreviewMetadata{}
	if err := json.Unmarshal(data, pm); err != nil {
		return nil
	}
	return pm
}

func (u *Unfurler) cacheSet(ctx context.Context, key string, pm *media.PreviewMetadata) {
	if u.cache == nil {
		return
	}
	data, err := json.Marshal(pm)
	if err != nil {
		return
	}
	if err := u.cache.Set(ctx, key, data, CacheTTL).Err(); err != nil {
		u.logger.Printf("unfurl: cache set failed for %s: %v", key, err)
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// fetchOEmbed resolves YouTube metadata through the oEmbed endpoint.
func (u *Unfurler) fetchOEmbed(ctx context.Context, target string) *media.PreviewMetadata {
	endpoint := fmt.Sprintf("https://www.youtube.com/oembed?url=%s&format=json", url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	resp, err := u.http.Do(req)
	if err != nil {
		u.logger.Printf("unfurl: oembed fetch failed for %s: %v", target, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var out oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil
	}

	return &media.PreviewMetadata{
		URL:       target,
		Title:     out.Title,
		ImageURL:  out.ThumbnailURL,
		SiteName:  out.ProviderName,
		Provider:  out.ProviderName,
		MediaType: media.TypeYouTube,
	}
}

// fetchPage unfurls a generic link: og:/twitter: meta tags first, with
// readability extraction filling whatever the page's tags left blank.
func (u *Unfurler) fetchPage(ctx context.Context, target string) *media.PreviewMetadata {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; nuggets-unfurl/1.0)")

	resp, err := u.http.Do(req)
	if err != nil {
		u.logger.Printf("unfurl: fetch failed for %s: %v", target, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil
	}

	pm := parseMetaTags(body)
	pm.URL = target
	pm.MediaType = media.TypeLink

	if pm.Title == "" || pm.Description == "" {
		if parsed, err := url.Parse(target); err == nil {
			if article, err := readability.FromReader(bytes.NewReader(body), parsed); err == nil {
				if pm.Title == "" {
					pm.Title = article.Title
				}
				if pm.Description == "" {
					pm.Description = article.Excerpt
				}
				if pm.ImageURL == "" {
					pm.ImageURL = article.Image
				}
				if pm.Favicon == "" {
					pm.Favicon = article.Favicon
				}
				if pm.SiteName == "" {
					pm.SiteName = article.SiteName
				}
			}
		}
	}

	if pm.Title == "" && pm.Description == "" && pm.ImageURL == "" {
		return nil
	}
	return pm
}

// parseMetaTags walks the document head collecting og:, twitter: and plain
// meta/link tags.
func parseMetaTags(body []byte) *media.PreviewMetadata {
	pm := &media.PreviewMetadata{}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return pm
	}

	var titleText string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && titleText == "" {
					titleText = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, content := attr(n, "property"), attr(n, "content")
				if name == "" {
					name = attr(n, "name")
				}
				switch name {
				case "og:title", "twitter:title":
					if pm.Title == "" {
						pm.Title = content
					}
				case "og:description", "twitter:description", "description":
					if pm.Description == "" {
						pm.Description = content
					}
				case "og:image", "twitter:image":
					if pm.ImageURL == "" {
						pm.ImageURL = content
					}
				case "og:site_name":
					if pm.SiteName == "" {
						pm.SiteName = content
					}
				}
			case "link":
				rel := attr(n, "rel")
				if (rel == "icon" || rel == "shortcut icon") && pm.Favicon == "" {
					pm.Favicon = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if pm.Title == "" {
		pm.Title = titleText
	}
	return pm
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
