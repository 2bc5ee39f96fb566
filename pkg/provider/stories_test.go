package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscompare/newscompare/pkg/config"
	"github.com/newscompare/newscompare/pkg/domain"
)

func storiesConfig(baseURL string) config.StoriesConfig {
	return config.StoriesConfig{
		BaseURL:  baseURL,
		APIKey:   "test-token",
		Timeout:  5 * time.Second,
		MaxPages: 50,
	}
}

func testQuery() domain.QueryRequest {
	return domain.QueryRequest{Category: "Packaging", Location: "Europe", LookbackDays: 30}
}

func TestStoriesClient_Fetch(t *testing.T) {
	t.Run("follows next links and preserves order", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))

			switch r.URL.Path {
			case "/api/v1/stories/industry-location/":
				assert.Equal(t, "Packaging", r.URL.Query().Get("industry"))
				assert.Equal(t, "Europe", r.URL.Query().Get("location"))
				assert.Equal(t, "30", r.URL.Query().Get("days_ago"))
				json.NewEncoder(w).Encode(map[string]interface{}{
					"count": 3,
					"next":  server.URL + "/page2",
					"results": []map[string]string{
						{"headline": "First story", "document_extract": "extract one"},
						{"headline": "Second story"},
					},
				})
			case "/page2":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"count":   3,
					"results": []map[string]string{{"headline": "Third story"}},
				})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)

		require.Len(t, items, 3)
		assert.Equal(t, "First story", items[0].Headline)
		assert.Equal(t, "extract one", items[0].Summary)
		assert.Equal(t, "Second story", items[1].Headline)
		assert.Equal(t, "Third story", items[2].Headline)
	})

	t.Run("relative next link resolves against base", func(t *testing.T) {
		pages := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages++
			if r.URL.Path == "/page2" {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"results": []map[string]string{{"headline": "Last"}},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"next":    "/page2",
				"results": []map[string]string{{"headline": "First"}},
			})
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Equal(t, 2, pages)
		require.Len(t, items, 2)
	})

	t.Run("legacy endpoint path", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/stories/", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]string{{"headline": "Legacy story"}},
			})
		}))
		defer server.Close()

		cfg := storiesConfig(server.URL)
		cfg.LegacyEndpoint = true
		client := NewStoriesClient(cfg)
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("record uri resolves to absolute link", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]string{
					{"headline": "With record", "uri": "/record/abc-123"},
					{"headline": "Without record"},
				},
			})
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, server.URL+"/record/abc-123", items[0].RecordURI)
		assert.Empty(t, items[1].RecordURI)
	})

	t.Run("pagination capped at max pages", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// every page points to itself, the cap must stop the loop
			json.NewEncoder(w).Encode(map[string]interface{}{
				"next":    server.URL + "/api/v1/stories/industry-location/",
				"results": []map[string]string{{"headline": "Repeated"}},
			})
		}))
		defer server.Close()

		cfg := storiesConfig(server.URL)
		cfg.MaxPages = 3
		client := NewStoriesClient(cfg)
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("non-2xx carries status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail": "invalid token"}`))
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		_, err := client.Fetch(context.Background(), testQuery())
		require.Error(t, err)

		var provErr *Error
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, KindHTTPStatus, provErr.Kind)
		assert.Equal(t, http.StatusForbidden, provErr.StatusCode)
		assert.Contains(t, provErr.Body, "invalid token")
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // connection refused

		client := NewStoriesClient(storiesConfig(server.URL))
		_, err := client.Fetch(context.Background(), testQuery())
		require.Error(t, err)

		var provErr *Error
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, KindTransport, provErr.Kind)
	})

	t.Run("malformed page body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		_, err := client.Fetch(context.Background(), testQuery())
		require.Error(t, err)

		var provErr *Error
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, KindParse, provErr.Kind)
	})

	t.Run("empty result set", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"count": 0, "results": []map[string]string{}})
		}))
		defer server.Close()

		client := NewStoriesClient(storiesConfig(server.URL))
		items, err := client.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestError_Error(t *testing.T) {
	httpErr := &Error{Kind: KindHTTPStatus, StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "unexpected status 502: bad gateway", httpErr.Error())

	wrapped := errors.New("boom")
	transportErr := &Error{Kind: KindTransport, Message: "request failed", Err: wrapped}
	assert.Equal(t, "request failed: boom", transportErr.Error())
	assert.ErrorIs(t, transportErr, wrapped)

	parseErr := &Error{Kind: KindParse, Message: "no json array found"}
	assert.Equal(t, "no json array found", parseErr.Error())
}
