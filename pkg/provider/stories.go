package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/newscompare/newscompare/pkg/config"
	"github.com/newscompare/newscompare/pkg/domain"
)

// maxErrorBody caps how much of an error response body is kept for display
const maxErrorBody = 8 * 1024

// StoriesClient fetches stories from the paginated listing API. It follows
// "next" links until the last page, preserving provider order.
type StoriesClient struct {
	cfg    config.StoriesConfig
	client *http.Client
}

// NewStoriesClient creates a client for the stories provider
func NewStoriesClient(cfg config.StoriesConfig) *StoriesClient {
	return &StoriesClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider display name
func (c *StoriesClient) Name() string { return "Stories" }

// storiesPage is one page of the listing response
type storiesPage struct {
	Count   int           `json:"count"`
	Next    string        `json:"next"`
	Results []storyRecord `json:"results"`
}

// storyRecord is a single story as the provider returns it
type storyRecord struct {
	Headline        string `json:"headline"`
	DocumentExtract string `json:"document_extract"`
	PublishedDate   string `json:"published_date"`
	PublishedBy     string `json:"published_by"`
	DocumentURL     string `json:"document_url"`
	ActivityClass   string `json:"activity_class"`
	URI             string `json:"uri"`
}

// Fetch retrieves all stories for the query, accumulating results across
// pages. The page count is capped defensively; hitting the cap returns what
// was collected so far with a warning.
func (c *StoriesClient) Fetch(ctx context.Context, req domain.QueryRequest) ([]domain.NewsItem, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("parse base url %q", c.cfg.BaseURL), Err: err}
	}

	next := c.firstPageURL(base, req)

	var items []domain.NewsItem
	for page := 0; next != ""; page++ {
		if page >= c.cfg.MaxPages {
			log.Printf("[WARN] stories pagination hit cap of %d pages, returning %d items", c.cfg.MaxPages, len(items))
			break
		}

		pageData, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}

		for _, rec := range pageData.Results {
			items = append(items, rec.toNewsItem(base))
		}

		next = resolveNext(base, pageData.Next)
	}

	return items, nil
}

// firstPageURL builds the initial request URL with query parameters; every
// following page comes back with parameters already embedded in "next"
func (c *StoriesClient) firstPageURL(base *url.URL, req domain.QueryRequest) string {
	path := "/api/v1/stories/industry-location/"
	if c.cfg.LegacyEndpoint {
		path = "/api/v1/stories/"
	}

	u := *base
	u.Path = path
	q := url.Values{}
	q.Set("industry", req.Category)
	q.Set("location", req.Location)
	q.Set("days_ago", strconv.Itoa(req.LookbackDays))
	u.RawQuery = q.Encode()
	return u.String()
}

// fetchPage gets and decodes a single result page
func (c *StoriesClient) fetchPage(ctx context.Context, pageURL string) (*storiesPage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "create stories request", Err: err}
	}
	httpReq.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "stories request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page storiesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &Error{Kind: KindParse, Message: "decode stories page", Err: err}
	}
	return &page, nil
}

// toNewsItem maps a provider record to the normalized form, resolving the
// provider record URI against the API base
func (r storyRecord) toNewsItem(base *url.URL) domain.NewsItem {
	item := domain.NewsItem{
		Headline:      r.Headline,
		Summary:       r.DocumentExtract,
		PublishedDate: r.PublishedDate,
		PublishedBy:   r.PublishedBy,
		DocumentURL:   r.DocumentURL,
		ActivityClass: r.ActivityClass,
	}
	if r.URI != "" {
		if ref, err := url.Parse(r.URI); err == nil {
			item.RecordURI = base.ResolveReference(ref).String()
		}
	}
	return item
}

// resolveNext makes the next-page link absolute; the provider normally
// returns absolute URLs but relative ones are tolerated
func resolveNext(base *url.URL, next string) string {
	if next == "" {
		return ""
	}
	ref, err := url.Parse(next)
	if err != nil {
		log.Printf("[WARN] unparsable next link %q, stopping pagination", next)
		return ""
	}
	return base.ResolveReference(ref).String()
}
