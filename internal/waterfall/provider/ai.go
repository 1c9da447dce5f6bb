package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/anthropic"
	"github.com/richmondnkrumah/Data-Scraper/pkg/gemini"
	"github.com/richmondnkrumah/Data-Scraper/pkg/mistral"
	"github.com/richmondnkrumah/Data-Scraper/pkg/perplexity"
)

func temperature() *float64 {
	t := estimateTemperature
	return &t
}

func maxTokens() *int {
	n := estimateMaxTokens
	return &n
}

// Mistral asks a Mistral chat model for a company estimate.
type Mistral struct {
	client  mistral.Client
	model   string
	enabled bool
}

// NewMistral wraps client. An empty model uses the client default.
func NewMistral(client mistral.Client, model string, enabled bool) *Mistral {
	return &Mistral{client: client, model: model, enabled: enabled && client != nil}
}

func (m *Mistral) Name() string  { return "mistral" }
func (m *Mistral) Enabled() bool { return m.enabled }

func (m *Mistral) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	resp, err := m.client.ChatCompletion(ctx, mistral.ChatCompletionRequest{
		Model:          m.model,
		Messages:       []mistral.Message{{Role: "user", Content: EstimatePrompt(q.Name)}},
		Temperature:    temperature(),
		MaxTokens:      maxTokens(),
		ResponseFormat: mistral.JSONObject,
	})
	if err != nil {
		return nil, err
	}
	return ParseEstimate(m.Name(), resp.Text())
}

// Gemini asks a Gemini model for a company estimate.
type Gemini struct {
	client  gemini.Client
	enabled bool
}

// NewGemini wraps client.
func NewGemini(client gemini.Client, enabled bool) *Gemini {
	return &Gemini{client: client, enabled: enabled && client != nil}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Enabled() bool { return g.enabled }

func (g *Gemini) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	req := gemini.UserText(EstimatePrompt(q.Name))
	req.GenerationConfig = &gemini.GenerationConfig{
		Temperature:      temperature(),
		MaxOutputTokens:  maxTokens(),
		ResponseMIMEType: "application/json",
	}
	resp, err := g.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseEstimate(g.Name(), resp.Text())
}

// Perplexity asks a Perplexity search-backed model for a company estimate.
type Perplexity struct {
	client  perplexity.Client
	model   string
	enabled bool
}

// NewPerplexity wraps client.
func NewPerplexity(client perplexity.Client, model string, enabled bool) *Perplexity {
	return &Perplexity{client: client, model: model, enabled: enabled && client != nil}
}

func (p *Perplexity) Name() string  { return "perplexity" }
func (p *Perplexity) Enabled() bool { return p.enabled }

func (p *Perplexity) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: "You are a financial research assistant. Answer with a single JSON object and nothing else."},
			{Role: "user", Content: EstimatePrompt(q.Name)},
		},
		Temperature:         temperature(),
		MaxTokens:           maxTokens(),
		SearchRecencyFilter: perplexity.RecencyYear,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Debug("perplexity: answer grounded",
		zap.String("company", q.Name),
		zap.Strings("sources", resp.Sources()),
	)
	return ParseEstimate(p.Name(), resp.Text())
}

// Anthropic asks a Claude model for a company estimate.
type Anthropic struct {
	client  anthropic.Client
	model   string
	enabled bool
}

// NewAnthropic wraps client.
func NewAnthropic(client anthropic.Client, model string, enabled bool) *Anthropic {
	return &Anthropic{client: client, model: model, enabled: enabled && client != nil}
}

func (a *Anthropic) Name() string  { return "anthropic" }
func (a *Anthropic) Enabled() bool { return a.enabled }

func (a *Anthropic) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   estimateMaxTokens,
		System:      "You are a financial research assistant. Answer with a single JSON object and nothing else.",
		Messages:    []anthropic.Message{{Role: "user", Content: EstimatePrompt(q.Name)}},
		Temperature: temperature(),
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(resp.Model, q.Name)
	return ParseEstimate(a.Name(), resp.Text())
}
