package server

import (
	"context"
	"sync"
)

// background tracks the goroutines that live as long as the server, such as
// the alert listener. Its context exists from construction, so Go and Stop
// may be called from different goroutines in any order.
type background struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newBackground() *background {
	ctx, cancel := context.WithCancel(context.Background())
	return &background{ctx: ctx, cancel: cancel}
}

// Go runs fn with a context that is cancelled by Stop. It reports false and
// does not run fn once Stop has been called.
func (b *background) Go(fn func(ctx context.Context)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx.Err() != nil {
		return false
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
	return true
}

// Stop cancels every running fn and waits for them to return.
func (b *background) Stop() {
	b.mu.Lock()
	b.cancel()
	b.mu.Unlock()
	b.wg.Wait()
}
