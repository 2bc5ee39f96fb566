package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/sashabaranov/go-openai"

	"github.com/newscompare/newscompare/pkg/config"
	"github.com/newscompare/newscompare/pkg/domain"
)

// ResearchClient fetches supplier news through a generative search API
// speaking the chat-completions wire format. The model is instructed to
// enumerate suppliers for the category/location and return recent news as a
// JSON array constrained by a response schema.
type ResearchClient struct {
	cfg    config.ResearchConfig
	client *http.Client
	schema *jsonschema.Schema

	now func() time.Time // injectable for tests
}

// NewResearchClient creates a client for the research provider
func NewResearchClient(cfg config.ResearchConfig) *ResearchClient {
	return &ResearchClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		schema: articleListSchema(),
		now:    time.Now,
	}
}

// Name returns the provider display name
func (c *ResearchClient) Name() string { return "Research" }

// researchArticle is the record shape the model is constrained to return
type researchArticle struct {
	Headline      string `json:"headline"`
	SummaryText   string `json:"summary_text"`
	PublishedDate string `json:"published_date"`
	PublishedBy   string `json:"published_by"`
	DocumentURL   string `json:"document_url"`
}

// researchRequest is the chat-completions request plus the provider's
// web-search extensions, which sit at the top level of the JSON body and so
// can't go through the library client
type researchRequest struct {
	openai.ChatCompletionRequest
	WebSearchOptions       webSearchOptions `json:"web_search_options"`
	SearchAfterDateFilter  string           `json:"search_after_date_filter"`
	SearchBeforeDateFilter string           `json:"search_before_date_filter"`
}

type webSearchOptions struct {
	SearchContextSize string `json:"search_context_size"`
}

// Fetch asks the model for supplier news and returns the parsed articles
// sorted by published date, newest first
func (c *ResearchClient) Fetch(ctx context.Context, req domain.QueryRequest) ([]domain.NewsItem, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, &Error{Kind: KindParse, Message: "marshal research request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "create research request", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "research request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var completion openai.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &Error{Kind: KindParse, Message: "decode research response", Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &Error{Kind: KindParse, Message: "no choices in research response"}
	}

	articles, err := parseArticles(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	items := make([]domain.NewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, domain.NewsItem{
			Headline:      a.Headline,
			Summary:       a.SummaryText,
			PublishedDate: a.PublishedDate,
			PublishedBy:   a.PublishedBy,
			DocumentURL:   a.DocumentURL,
		})
	}
	sortByDateDesc(items)

	return items, nil
}

// buildRequest assembles the prompt, schema constraint and date filters
func (c *ResearchClient) buildRequest(req domain.QueryRequest) researchRequest {
	before := c.now()
	after := before.AddDate(0, 0, -req.LookbackDays)

	systemMsg := fmt.Sprintf(
		"You are a market research analyst with deep knowledge of what a procurement "+
			"category manager in the %s industry needs.", req.Category)

	var sb strings.Builder
	fmt.Fprintf(&sb, "I need you to produce a list of suppliers for industry: %s in location: %s. ",
		req.Category, req.Location)
	sb.WriteString("Then find recent news articles for these suppliers. ")
	sb.WriteString("Focus on topics like corporate finance, partnerships, product innovations, ")
	sb.WriteString("supplier risk and regulatory changes that I can use in preparing my ")
	sb.WriteString("procurement strategy, risk management and supplier negotiations. ")
	sb.WriteString("For each source cited in your response, provide a separate summary of ")
	sb.WriteString("that source's content. Prioritise more recent news articles. ")
	sb.WriteString("Please output a list of JSON objects with one JSON object per source ")
	sb.WriteString("with the following fields: headline, summary_text, published_date, ")
	sb.WriteString("published_by, document_url")

	return researchRequest{
		ChatCompletionRequest: openai.ChatCompletionRequest{
			Model: c.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemMsg},
				{Role: openai.ChatMessageRoleUser, Content: sb.String()},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   "supplier_news",
					Schema: c.schema,
				},
			},
		},
		WebSearchOptions:       webSearchOptions{SearchContextSize: c.cfg.SearchContextSize},
		SearchAfterDateFilter:  after.Format("01/02/2006"),
		SearchBeforeDateFilter: before.Format("01/02/2006"),
	}
}

// parseArticles extracts the JSON array from the model's text content.
// Anything the model wraps around the array is ignored; a missing or
// malformed array is a fatal parse error for this call.
func parseArticles(content string) ([]researchArticle, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, &Error{Kind: KindParse, Message: "no json array found in research content"}
	}

	var articles []researchArticle
	if err := json.Unmarshal([]byte(content[start:end+1]), &articles); err != nil {
		return nil, &Error{Kind: KindParse, Message: "parse research content", Err: err}
	}
	return articles, nil
}

// sortByDateDesc orders items newest first. Dates that don't start with an
// ISO yyyy-mm-dd day are treated as missing and sort last; this is an
// assumption, the provider doesn't document partially-parseable dates.
func sortByDateDesc(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return isoDayKey(items[i].PublishedDate) > isoDayKey(items[j].PublishedDate)
	})
}

// isoDayKey normalizes a date string to its yyyy-mm-dd prefix, or "" when
// the prefix isn't a valid ISO day
func isoDayKey(s string) string {
	if len(s) < 10 {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
		return ""
	}
	return s[:10]
}

// articleListSchema builds the response-format constraint: a JSON array of
// article records with all fields required
func articleListSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	item := reflector.Reflect(&researchArticle{})
	item.Version = ""
	return &jsonschema.Schema{Type: "array", Items: item}
}
