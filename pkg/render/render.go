// Package render formats provider results into displayable panels. It owns
// truncation, absent-field defaults and sanitization of provider-supplied
// text; ordering is whatever the provider returned.
package render

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/newscompare/newscompare/pkg/domain"
	"github.com/newscompare/newscompare/pkg/provider"
)

const (
	defaultMaxItems     = 20
	defaultExcerptLimit = 300

	// placeholder for absent caption fields
	notAvailable = "N/A"

	// label shown instead of a link when an item has no document URL
	noSourceLabel = "No source URL"

	ellipsis = "..."
)

// Block is one news item prepared for display
type Block struct {
	Headline    string `json:"headline"`
	Caption     string `json:"caption"`
	Excerpt     string `json:"excerpt,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	SourceLabel string `json:"source_label"`
	RecordURL   string `json:"record_url,omitempty"`
}

// Panel is one provider's rendered column: either a header with blocks or
// an error message
type Panel struct {
	Provider string  `json:"provider"`
	Header   string  `json:"header,omitempty"`
	Blocks   []Block `json:"blocks,omitempty"`
	Error    string  `json:"error,omitempty"`
	Elapsed  float64 `json:"elapsed_seconds,omitempty"`
}

// Renderer turns provider results into panels
type Renderer struct {
	maxItems     int
	excerptLimit int
	policy       *bluemonday.Policy
}

// New creates a renderer; non-positive limits fall back to the defaults
// (20 items, 300 character excerpts)
func New(maxItems, excerptLimit int) *Renderer {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if excerptLimit <= 0 {
		excerptLimit = defaultExcerptLimit
	}
	return &Renderer{
		maxItems:     maxItems,
		excerptLimit: excerptLimit,
		policy:       bluemonday.StrictPolicy(),
	}
}

// Result renders one provider result, success or failure
func (r *Renderer) Result(res domain.ProviderResult) Panel {
	if res.Err != nil {
		return r.Failure(res.Provider, res.Err)
	}
	panel := r.Items(res.Items)
	panel.Provider = res.Provider
	panel.Elapsed = res.ElapsedSeconds()
	return panel
}

// Items renders a header count line and at most the first maxItems blocks
// in the order given
func (r *Renderer) Items(items []domain.NewsItem) Panel {
	shown := items
	if len(shown) > r.maxItems {
		shown = shown[:r.maxItems]
	}

	blocks := make([]Block, 0, len(shown))
	for _, item := range shown {
		blocks = append(blocks, r.block(item))
	}

	return Panel{
		Header: fmt.Sprintf("%d items found", len(items)),
		Blocks: blocks,
	}
}

// Failure renders a single error panel. HTTP failures keep the status code
// and raw body text; everything else gets the error message as-is.
func (r *Renderer) Failure(providerName string, err error) Panel {
	msg := "unknown error"
	var provErr *provider.Error
	switch {
	case errors.As(err, &provErr) && provErr.Kind == provider.KindHTTPStatus:
		msg = fmt.Sprintf("request failed with status %d: %s", provErr.StatusCode, provErr.Body)
	case err != nil:
		msg = err.Error()
	}
	return Panel{Provider: providerName, Error: msg}
}

// block formats a single item
func (r *Renderer) block(item domain.NewsItem) Block {
	b := Block{
		Headline:  r.plainText(item.Headline),
		Caption:   r.caption(item),
		Excerpt:   r.excerpt(item.Summary),
		RecordURL: item.RecordURI,
	}
	if item.DocumentURL != "" {
		b.SourceURL = item.DocumentURL
		b.SourceLabel = "Source"
	} else {
		// absence is stated explicitly, never a blank line
		b.SourceLabel = noSourceLabel
	}
	return b
}

// caption joins activity class (when present), date and publisher, with
// absent date/publisher shown as N/A
func (r *Renderer) caption(item domain.NewsItem) string {
	parts := make([]string, 0, 3)
	if item.ActivityClass != "" {
		parts = append(parts, r.plainText(item.ActivityClass))
	}
	parts = append(parts, orNA(item.PublishedDate), orNA(r.plainText(item.PublishedBy)))
	return strings.Join(parts, " | ")
}

// excerpt caps the summary at excerptLimit characters with an ellipsis when
// truncated
func (r *Renderer) excerpt(summary string) string {
	text := r.plainText(summary)
	runes := []rune(text)
	if len(runes) <= r.excerptLimit {
		return text
	}
	return string(runes[:r.excerptLimit]) + ellipsis
}

// plainText strips any markup from provider-supplied text
func (r *Renderer) plainText(s string) string {
	return html.UnescapeString(r.policy.Sanitize(s))
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
