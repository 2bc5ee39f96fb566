package domain

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem is a normalized news record regardless of the source provider.
// Headline is the only guaranteed field; everything else may be empty and
// is defaulted at render time.
type NewsItem struct {
	Headline      string `json:"headline"`
	Summary       string `json:"summary,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	PublishedBy   string `json:"published_by,omitempty"`
	DocumentURL   string `json:"document_url,omitempty"`

	// provider-specific extras
	ActivityClass string `json:"activity_class,omitempty"`
	RecordURI     string `json:"record_uri,omitempty"`
}

// QueryRequest is a single comparison query, immutable once submitted
type QueryRequest struct {
	Category     string `json:"category"`
	Location     string `json:"location"`
	LookbackDays int    `json:"lookback_days"`
}

// DefaultLookbackDays is used when a request doesn't specify a lookback window
const DefaultLookbackDays = 30

// Validate checks the submission precondition: category must be non-blank
// and location non-empty
func (q QueryRequest) Validate() error {
	if strings.TrimSpace(q.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if q.Location == "" {
		return fmt.Errorf("location is required")
	}
	if q.LookbackDays < 0 {
		return fmt.Errorf("lookback days must be non-negative")
	}
	return nil
}

// ProviderResult holds one provider's outcome for a submitted request,
// either a list of items with timing or an error. Results are independent
// per provider.
type ProviderResult struct {
	Provider string        `json:"provider"`
	Items    []NewsItem    `json:"items,omitempty"`
	Count    int           `json:"count"`
	Elapsed  time.Duration `json:"-"`
	Err      error         `json:"-"`
}

// OK reports whether the provider call succeeded
func (r ProviderResult) OK() bool { return r.Err == nil }

// ElapsedSeconds returns the fetch duration in seconds for display
func (r ProviderResult) ElapsedSeconds() float64 { return r.Elapsed.Seconds() }
