package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscompare/newscompare/pkg/domain"
)

func TestGenerator_GenerateRSS(t *testing.T) {
	g := NewGenerator("https://compare.example.com/")
	req := domain.QueryRequest{Category: "Packaging", Location: "Europe", LookbackDays: 30}

	t.Run("renders channel and items", func(t *testing.T) {
		items := []domain.NewsItem{
			{
				Headline:      "Supplier expands capacity",
				Summary:       "A large investment in new lines.",
				PublishedDate: "2024-02-01",
				PublishedBy:   "Reuters",
				DocumentURL:   "https://example.com/story1",
				ActivityClass: "investment",
			},
			{
				Headline:  "No url story",
				RecordURI: "https://provider.example.com/record/2",
			},
		}

		out, err := g.GenerateRSS(items, req)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(out, xmlHeaderPrefix), "should start with XML declaration")
		assert.Contains(t, out, "<title>Newscompare - Packaging in Europe</title>")
		assert.Contains(t, out, "last 30 days")
		assert.Contains(t, out, "<title>Supplier expands capacity</title>")
		assert.Contains(t, out, "<link>https://example.com/story1</link>")
		assert.Contains(t, out, "Published by Reuters")
		assert.Contains(t, out, "<category>investment</category>")
		// record link used when the story has no document URL
		assert.Contains(t, out, "<link>https://provider.example.com/record/2</link>")
	})

	t.Run("empty item list still renders channel", func(t *testing.T) {
		out, err := g.GenerateRSS(nil, req)
		require.NoError(t, err)
		assert.Contains(t, out, "<channel>")
		assert.NotContains(t, out, "<item>")
	})
}

const xmlHeaderPrefix = `<?xml version="1.0" encoding="UTF-8"?>`
