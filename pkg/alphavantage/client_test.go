package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

func TestSymbolSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "SYMBOL_SEARCH", r.URL.Query().Get("function"))
		assert.Equal(t, "apple", r.URL.Query().Get("keywords"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		_, _ = w.Write([]byte(`{"bestMatches":[
			{"1. symbol":"APC.DEX","2. name":"Apple Inc","4. region":"XETRA","9. matchScore":"0.9"},
			{"1. symbol":"AAPL","2. name":"Apple Inc","4. region":"United States","9. matchScore":"0.8"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	matches, err := c.SymbolSearch(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "AAPL", matches[1].Symbol)
	assert.Equal(t, "United States", matches[1].Region)
}

func TestOverview(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     string
		rateLimited bool
		wantSymbol  string
	}{
		{
			name:       "success",
			status:     http.StatusOK,
			body:       `{"Symbol":"AAPL","Name":"Apple Inc","MarketCapitalization":"3000000000000","PERatio":"30.5","PEGRatio":"None"}`,
			wantSymbol: "AAPL",
		},
		{
			name:        "note_throttle",
			status:      http.StatusOK,
			body:        `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`,
			wantErr:     "alphavantage: overview",
			rateLimited: true,
		},
		{
			name:        "information_throttle",
			status:      http.StatusOK,
			body:        `{"Information":"daily limit reached"}`,
			wantErr:     "rate limited",
			rateLimited: true,
		},
		{
			name:    "error_message",
			status:  http.StatusOK,
			body:    `{"Error Message":"Invalid API call"}`,
			wantErr: "Invalid API call",
		},
		{
			name:    "server_error",
			status:  http.StatusBadGateway,
			body:    `bad gateway`,
			wantErr: "unexpected status 502",
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `{nope`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
				assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("test-key", WithBaseURL(srv.URL))
			ov, err := c.Overview(context.Background(), "AAPL")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.rateLimited, resilience.IsRateLimited(err))
				assert.Nil(t, ov)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSymbol, ov.Symbol)
			require.NotNil(t, Number(ov.MarketCapitalization))
			assert.InDelta(t, 3e12, *Number(ov.MarketCapitalization), 1)
			assert.Nil(t, Number(ov.PEGRatio))
		})
	}
}

func TestOverview_StatusErrorType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Overview(context.Background(), "MSFT")
	var se *resilience.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, resilience.IsRateLimited(err))
}

func TestNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want *float64
	}{
		{"12.5", ptr(12.5)},
		{" 7 ", ptr(7)},
		{"-0.03", ptr(-0.03)},
		{"None", nil},
		{"-", nil},
		{"", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := Number(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.InDelta(t, *tt.want, *got, 1e-9)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("my-key").(*httpClient)
	assert.Equal(t, "my-key", c.apiKey)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.NotNil(t, c.http.Transport)

	custom := &http.Client{}
	c = NewClient("k", WithHTTPClient(custom)).(*httpClient)
	assert.Same(t, custom, c.http)
}

func ptr(v float64) *float64 { return &v }
