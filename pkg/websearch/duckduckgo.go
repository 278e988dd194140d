package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoHTMLEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the keyless HTML results page.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

func NewDuckDuckGo(endpoint string, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = duckDuckGoHTMLEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{endpoint: endpoint, client: client}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo page: %w", err)
	}

	results := make([]Result, 0, maxResults)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find(".result__a").First()
		snippet := collapseSpace(s.Find(".result__snippet").First().Text())
		if snippet == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, Result{
			Title:   collapseSpace(link.Text()),
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})
		return len(results) < maxResults
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
