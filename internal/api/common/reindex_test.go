package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/content-search-sync/internal/sync/mocks"
)

func TestReindexer_Run(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().ReindexAll(gomock.Any()).DoAndReturn(func(ctx context.Context) []string {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		return []string{"Imported 1 for article."}
	})

	lines, err := NewReindexer(svc, time.Minute).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Imported 1 for article."}, lines)
}

func TestReindexer_ConcurrentCallsShareRun(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	release := make(chan struct{})
	started := make(chan struct{})
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().ReindexAll(gomock.Any()).DoAndReturn(func(context.Context) []string {
		close(started)
		<-release
		return []string{"Imported 0 for article."}
	}).Times(1)

	r := NewReindexer(svc, time.Minute)

	var wg sync.WaitGroup
	results := make([][]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = r.Run(context.Background())
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = r.Run(context.Background())
	}()

	// give the second caller time to join the in-flight run
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"Imported 0 for article."}, results[0])
	assert.Equal(t, []string{"Imported 0 for article."}, results[1])
}

func TestReindexer_CallerGivesUp(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	release := make(chan struct{})
	done := make(chan struct{})
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().ReindexAll(gomock.Any()).DoAndReturn(func(ctx context.Context) []string {
		<-release
		assert.NoError(t, ctx.Err(), "run must outlive the request")
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReindexer(svc, time.Minute).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	<-done
}
