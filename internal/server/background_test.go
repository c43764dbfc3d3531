package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackground_StopCancelsAndWaits(t *testing.T) {
	b := newBackground()

	exited := make(chan struct{})
	require.True(t, b.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(exited)
	}))

	b.Stop()

	select {
	case <-exited:
	default:
		t.Fatal("Stop returned before the goroutine exited")
	}
}

func TestBackground_GoAfterStopIsRefused(t *testing.T) {
	b := newBackground()
	b.Stop()

	ran := false
	assert.False(t, b.Go(func(context.Context) { ran = true }))
	assert.False(t, ran)
}

func TestBackground_StartAndStopFromDifferentGoroutines(t *testing.T) {
	b := newBackground()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.Go(func(ctx context.Context) {
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		})
	}()
	go func() {
		defer wg.Done()
		b.Stop()
	}()
	wg.Wait()

	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
