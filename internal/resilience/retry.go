package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// StatusError is a non-2xx HTTP response from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return e.Provider + ": unexpected status " + strconv.Itoa(e.Code) + ": " + body
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ErrRateLimited marks a provider that throttled the call inside a
// successful response body.
var ErrRateLimited = eris.New("rate limited")

// IsRateLimited reports whether err is a 429 or wraps ErrRateLimited.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusTooManyRequests
}

// IsTransient reports whether err looks like a failure that may clear on
// its own: a temporary status, a network timeout or a dropped connection.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrCircuitOpen) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection reset by peer", "broken pipe", "i/o timeout", "server closed idle connection"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Policy bounds the retries of one provider call.
type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
	// Name labels retry log lines.
	Name string
}

// DefaultPolicy is two attempts with a short pause, enough to ride out a
// dropped connection without stalling a tier.
func DefaultPolicy(name string) Policy {
	return Policy{Attempts: 2, Base: 250 * time.Millisecond, Max: 2 * time.Second, Name: name}
}

// Retry calls fn until it succeeds, returns a non-transient error, the
// attempts run out or ctx ends.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	var (
		zero T
		err  error
	)
	for attempt := 1; ; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.Attempts || ctx.Err() != nil || !IsTransient(err) {
			return zero, err
		}

		delay := backoff(p, attempt)
		zap.L().Debug("retrying provider call",
			zap.String("provider", p.Name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
}

// backoff doubles Base per attempt, capped at Max, with up to 25% jitter.
func backoff(p Policy, attempt int) time.Duration {
	d := p.Base << (attempt - 1)
	if p.Max > 0 && (d > p.Max || d <= 0) {
		d = p.Max
	}
	if d <= 0 {
		return 0
	}
	return d - time.Duration(rand.Int64N(int64(d)/4+1))
}
