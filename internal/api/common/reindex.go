package common

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stacklok/content-search-sync/internal/sync"
)

// Reindexer runs full reindexes requested over HTTP. Concurrent requests
// share a single run, and the run is not cancelled when a client goes away.
type Reindexer struct {
	svc     sync.Service
	timeout time.Duration
	group   singleflight.Group
}

// NewReindexer creates a Reindexer whose runs are bounded by timeout
func NewReindexer(svc sync.Service, timeout time.Duration) *Reindexer {
	return &Reindexer{svc: svc, timeout: timeout}
}

// Run starts a reindex, or joins the one in progress, and waits for its debug
// lines. It returns ctx.Err() when ctx ends first; the run keeps going.
func (r *Reindexer) Run(ctx context.Context) ([]string, error) {
	ch := r.group.DoChan("reindex", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.svc.ReindexAll(runCtx), nil
	})

	select {
	case res := <-ch:
		lines, _ := res.Val.([]string)
		return lines, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
