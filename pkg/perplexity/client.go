// Package perplexity is a client for Perplexity's search-grounded chat
// completions.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "sonar-pro"

	// RecencyYear limits web search to the past year.
	RecencyYear = "year"
)

// Client asks a search-backed model a question.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// ChatCompletionRequest is the body of POST /chat/completions. The search
// fields narrow the web search the model grounds its answer on.
type ChatCompletionRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         *float64  `json:"temperature,omitempty"`
	MaxTokens           *int      `json:"max_tokens,omitempty"`
	SearchRecencyFilter string    `json:"search_recency_filter,omitempty"`
	SearchDomainFilter  []string  `json:"search_domain_filter,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchResult is a page the answer was grounded on.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date,omitempty"`
}

// ChatCompletionResponse is the answer plus the sources behind it.
type ChatCompletionResponse struct {
	ID            string         `json:"id"`
	Model         string         `json:"model"`
	Choices       []Choice       `json:"choices"`
	Citations     []string       `json:"citations"`
	SearchResults []SearchResult `json:"search_results"`
	Usage         Usage          `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

var (
	thinkRe    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	citationRe = regexp.MustCompile(`\[\d+\]`)
)

// Text returns the first choice's content with reasoning blocks and inline
// citation markers ([1], [2]) removed. It returns "" when there is no
// choice.
func (r *ChatCompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	text := thinkRe.ReplaceAllString(r.Choices[0].Message.Content, "")
	text = citationRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Sources returns the cited URLs, preferring the structured search results.
func (r *ChatCompletionResponse) Sources() []string {
	if r == nil {
		return nil
	}
	if len(r.SearchResults) == 0 {
		return r.Citations
	}
	out := make([]string, 0, len(r.SearchResults))
	for _, s := range r.SearchResults {
		if s.URL != "" {
			out = append(out, s.URL)
		}
	}
	return out
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API host.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithModel sets the model used when a request names none.
func WithModel(model string) Option {
	return func(c *httpClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates a Perplexity client. Search-grounded answers are slow,
// so the default timeout is generous.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if len(req.Messages) == 0 {
		return nil, eris.New("perplexity: no messages")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrapf(err, "perplexity: %s completion", req.Model)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "perplexity: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Provider: "perplexity", Code: resp.StatusCode, Body: string(body)}
	}

	var out ChatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "perplexity: decode response")
	}
	return &out, nil
}
