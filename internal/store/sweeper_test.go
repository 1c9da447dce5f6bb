package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_Sweep(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.PutCompany(ctx, "old", sampleRecord("Old", now.Add(-48*time.Hour))))
	require.NoError(t, st.PutCompany(ctx, "new", sampleRecord("New", now)))

	sw := NewSweeper(st, 24*time.Hour, time.Minute)
	sw.now = func() time.Time { return now }

	assert.Equal(t, 1, sw.Sweep(ctx))
	assert.Equal(t, 0, sw.Sweep(ctx))
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	sw := NewSweeper(NewMemory(), time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sweeper.Run did not stop after context cancellation")
	}
}

func TestSweeper_DisabledRetention(t *testing.T) {
	sw := NewSweeper(NewMemory(), 0, 0)
	assert.Equal(t, time.Hour, sw.interval)
	// Returns immediately without a cancelled context.
	sw.Run(context.Background())
}
