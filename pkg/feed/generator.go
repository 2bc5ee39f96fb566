// Package feed renders a query's stories as an RSS 2.0 feed, so a
// category/location search can be followed from a feed reader. Each poll is
// a fresh provider query, nothing is stored.
package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/newscompare/newscompare/pkg/domain"
)

// Generator creates RSS feeds from news items
type Generator struct {
	baseURL string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GenerateRSS creates an RSS 2.0 feed for the query's items
func (g *Generator) GenerateRSS(items []domain.NewsItem, req domain.QueryRequest) (string, error) {
	title := fmt.Sprintf("Newscompare - %s in %s", req.Category, req.Location)

	q := url.Values{}
	q.Set("category", req.Category)
	q.Set("location", req.Location)
	selfLink := fmt.Sprintf("%s/rss?%s", g.baseURL, q.Encode())

	rssItems := make([]*RSSItem, 0, len(items))
	for _, item := range items {
		rssItems = append(rssItems, convertToRSSItem(item))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   fmt.Sprintf("Supplier news for %s in %s, last %d days", req.Category, req.Location, req.LookbackDays),
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem maps a news item to an RSS item. The link falls back to
// the provider record when the story has no document URL.
func convertToRSSItem(item domain.NewsItem) *RSSItem {
	link := item.DocumentURL
	if link == "" {
		link = item.RecordURI
	}

	desc := item.Summary
	if item.PublishedBy != "" {
		desc = fmt.Sprintf("%s\n\nPublished by %s", desc, item.PublishedBy)
	}

	rssItem := &RSSItem{
		Title:       item.Headline,
		Link:        link,
		GUID:        link,
		Description: strings.TrimSpace(desc),
		PubDate:     item.PublishedDate,
	}
	if item.ActivityClass != "" {
		rssItem.Categories = []string{item.ActivityClass}
	}
	return rssItem
}
