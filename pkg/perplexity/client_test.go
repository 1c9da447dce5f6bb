package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

func ask(t *testing.T, c Client) (*ChatCompletionResponse, error) {
	t.Helper()
	return c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Tell me about Apple"}},
	})
}

func TestChatCompletion_Statuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		transient bool
	}{
		{name: "throttled", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantErr: "unexpected status 429", transient: true},
		{name: "upstream down", status: http.StatusBadGateway, body: `bad gateway`, wantErr: "unexpected status 502", transient: true},
		{name: "bad key", status: http.StatusUnauthorized, body: `{"error":"invalid api key"}`, wantErr: "invalid api key"},
		{name: "garbage body", status: http.StatusOK, body: `{not json`, wantErr: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := ask(t, NewClient("k", WithBaseURL(srv.URL)))
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.transient, resilience.IsTransient(err))
			}
		})
	}
}

func TestChatCompletion_SendsSearchOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "sonar", raw["model"])
		assert.Equal(t, "year", raw["search_recency_filter"])
		assert.Equal(t, []any{"sec.gov"}, raw["search_domain_filter"])
		_, hasTemp := raw["temperature"]
		assert.False(t, hasTemp)

		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL+"/"), WithModel("sonar"))
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages:            []Message{{Role: "user", Content: "q"}},
		SearchRecencyFilter: RecencyYear,
		SearchDomainFilter:  []string{"sec.gov"},
	})
	require.NoError(t, err)
}

func TestChatCompletion_DefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultModel, req.Model)
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := ask(t, NewClient("k", WithBaseURL(srv.URL), WithModel("")))
	require.NoError(t, err)
}

func TestChatCompletion_NoMessages(t *testing.T) {
	_, err := NewClient("k").ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.ErrorContains(t, err, "no messages")
}

func TestResponse_TextStripsReasoningAndCitations(t *testing.T) {
	resp := &ChatCompletionResponse{Choices: []Choice{{Message: Message{
		Content: "<think>\nlooking up revenue\n</think>\n{\"revenue\": 391[1][2]}",
	}}}}
	assert.Equal(t, `{"revenue": 391}`, resp.Text())

	assert.Empty(t, (&ChatCompletionResponse{}).Text())
	var nilResp *ChatCompletionResponse
	assert.Empty(t, nilResp.Text())
}

func TestResponse_Sources(t *testing.T) {
	withResults := &ChatCompletionResponse{
		Citations:     []string{"https://old.example"},
		SearchResults: []SearchResult{{Title: "10-K", URL: "https://sec.gov/a"}, {Title: "blank"}},
	}
	assert.Equal(t, []string{"https://sec.gov/a"}, withResults.Sources())

	citationsOnly := &ChatCompletionResponse{Citations: []string{"https://example.com"}}
	assert.Equal(t, []string{"https://example.com"}, citationsOnly.Sources())
}

func TestChatCompletion_DecodesSearchResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "cmpl-9",
			"model": "sonar-pro",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "ok"}}],
			"search_results": [{"title": "Apple 10-K", "url": "https://sec.gov/apple", "date": "2025-11-01"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	resp, err := ask(t, NewClient("k", WithBaseURL(srv.URL)))
	require.NoError(t, err)
	assert.Equal(t, "cmpl-9", resp.ID)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, []string{"https://sec.gov/apple"}, resp.Sources())
}

func TestChatCompletion_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("k", WithBaseURL(srv.URL)).ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "q"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sonar-pro completion")
}
