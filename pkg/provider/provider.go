// Package provider contains the two news-source clients: the paginated
// stories listing API and the generative research API. Both normalize
// their responses into domain.NewsItem and report failures as *Error.
package provider

import (
	"context"
	"fmt"

	"github.com/newscompare/newscompare/pkg/domain"
)

// Fetcher is the common shape of a provider client
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req domain.QueryRequest) ([]domain.NewsItem, error)
}

// ErrorKind distinguishes failure classes for display
type ErrorKind string

// provider failure kinds
const (
	KindTransport  ErrorKind = "transport"
	KindHTTPStatus ErrorKind = "http_status"
	KindParse      ErrorKind = "parse"
)

// Error is a provider call failure. HTTP failures carry the status code and
// raw body text so the UI can surface them verbatim.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error if any
func (e *Error) Unwrap() error { return e.Err }
