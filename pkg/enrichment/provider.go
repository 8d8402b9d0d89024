package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	fetchTimeout  = 15 * time.Second
	maxBodyBytes  = 2 << 20
	browserUA     = "Mozilla/5.0 (compatible; LeadForgeBot/1.0)"
	maxTextLength = 20000
)

// WebsiteFetcher retrieves the visible text of a lead's website for the
// facts extractor.
type WebsiteFetcher interface {
	FetchText(ctx context.Context, website string) (string, error)
}

// HTTPFetcher fetches a page over plain HTTP and strips it down to text.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a website fetcher with sane timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// FetchText downloads the site's landing page and returns its visible
// text. Script and style content is dropped; whitespace is collapsed.
func (f *HTTPFetcher) FetchText(ctx context.Context, website string) (string, error) {
	pageURL := normalizeURL(website)
	if pageURL == "" {
		return "", fmt.Errorf("no valid website URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	text := extractText(string(body))
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	return text, nil
}

// normalizeURL adds a scheme when the stored website omits one.
func normalizeURL(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	if _, err := url.Parse(website); err != nil {
		return ""
	}
	return website
}

// extractText walks the HTML tree and collects text nodes, skipping
// script, style, and markup noise. Malformed HTML degrades gracefully;
// the tokenizer never fails on real-world pages.
func extractText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " ")
}
