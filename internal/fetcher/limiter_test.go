package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestAdaptiveLimiter_OnSuccess_IncreasesRate(t *testing.T) {
	lim := NewAdaptiveLimiter("test", 10, 10)

	lim.OnSuccess()
	assert.InDelta(t, 12.0, float64(lim.Limit()), 0.1)

	lim.OnSuccess()
	assert.InDelta(t, 14.4, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_OnRateLimit_DecreasesRate(t *testing.T) {
	lim := NewAdaptiveLimiter("test", 10, 10)

	lim.OnRateLimit()
	assert.InDelta(t, 5.0, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter("test", 10, 10)
	for range 20 {
		lim.OnSuccess()
	}
	assert.InDelta(t, 20.0, float64(lim.Limit()), 0.1)

	for range 20 {
		lim.OnRateLimit()
	}
	assert.InDelta(t, 2.5, float64(lim.Limit()), 0.1)
}

func TestPerMinute(t *testing.T) {
	lim := PerMinute("alphavantage", 5)
	assert.InDelta(t, 5.0/60, float64(lim.Limit()), 0.0001)

	unlimited := PerMinute("yahoo", 0)
	assert.Equal(t, rate.Inf, unlimited.Limit())
	unlimited.OnRateLimit()
	assert.Equal(t, rate.Inf, unlimited.Limit())
}

func TestAdaptiveLimiter_Wait(t *testing.T) {
	lim := NewAdaptiveLimiter("test", 1000, 10)
	assert.NoError(t, lim.Wait(context.Background()))
}

func TestAdaptiveLimiter_Wait_ContextCancelled(t *testing.T) {
	lim := NewAdaptiveLimiter("test", 0.001, 1)
	// Drain the single token.
	assert.NoError(t, lim.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, lim.Wait(ctx))
}

func TestLimiters(t *testing.T) {
	l := NewLimiters(map[string]float64{"finnhub": 60, "alphavantage": 5})

	assert.Equal(t, []string{"alphavantage", "finnhub"}, l.Names())
	assert.Same(t, l.For("finnhub"), l.For("finnhub"))
	assert.InDelta(t, 1.0, float64(l.For("finnhub").Limit()), 0.001)
	assert.Equal(t, rate.Inf, l.For("unknown").Limit())
}
