package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/metrics"
)

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]domain.Post
	err     error
}

func (f *fakeWriter) InsertBatch(_ context.Context, items []domain.Post) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, append([]domain.Post(nil), items...))
	return int64(len(items)), nil
}

func (f *fakeWriter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func post(i int) domain.Post {
	return domain.Post{AuthorID: "a", CreatedAt: int64(i), Content: "x"}
}

func TestIngestor_BatchesBySize(t *testing.T) {
	w := &fakeWriter{}
	m := metrics.NewNop()
	ig := NewIngestor(w, 100, 3, time.Hour, quietLog(), m)
	ig.Start(context.Background())

	for i := 0; i < 7; i++ {
		require.NoError(t, ig.Submit(context.Background(), post(i)))
	}
	ig.Close()
	require.NoError(t, ig.Wait())

	require.Equal(t, 7, w.total())
	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0], 3)
	assert.Len(t, w.batches[1], 3)
	assert.Len(t, w.batches[2], 1)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PostsIngested.WithLabelValues("inserted")))
}

func TestIngestor_FlushesOnTimer(t *testing.T) {
	w := &fakeWriter{}
	ig := NewIngestor(w, 10, 100, 10*time.Millisecond, quietLog(), metrics.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ig.Start(ctx)

	require.True(t, ig.Enqueue(post(1)))
	assert.Eventually(t, func() bool { return w.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestIngestor_FlushesOnCancel(t *testing.T) {
	w := &fakeWriter{}
	ig := NewIngestor(w, 10, 100, time.Hour, quietLog(), metrics.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	ig.Start(ctx)

	require.True(t, ig.Enqueue(post(1)))
	require.True(t, ig.Enqueue(post(2)))
	assert.Eventually(t, func() bool { return len(ig.queue) == 0 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, ig.Wait())

	assert.Equal(t, 2, w.total())
}

func TestIngestor_DrainsQueueOnCancel(t *testing.T) {
	w := &fakeWriter{}
	ig := NewIngestor(w, 100, 20, time.Hour, quietLog(), metrics.NewNop())
	for i := 0; i < 50; i++ {
		require.True(t, ig.Enqueue(post(i)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ig.Start(ctx)
	require.NoError(t, ig.Wait())

	assert.Equal(t, 50, w.total())
	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[2], 10)
}

func TestIngestor_EnqueueFull(t *testing.T) {
	ig := NewIngestor(&fakeWriter{}, 1, 10, time.Hour, quietLog(), metrics.NewNop())

	assert.True(t, ig.Enqueue(post(1)))
	assert.False(t, ig.Enqueue(post(2)))
}

func TestIngestor_WriterFailureCounted(t *testing.T) {
	w := &fakeWriter{err: errors.New("boom")}
	m := metrics.NewNop()
	ig := NewIngestor(w, 10, 2, time.Hour, quietLog(), m)
	ig.Start(context.Background())

	require.NoError(t, ig.Submit(context.Background(), post(1)))
	require.NoError(t, ig.Submit(context.Background(), post(2)))
	require.NoError(t, ig.Submit(context.Background(), post(3)))
	ig.Close()

	err := ig.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
	assert.Contains(t, err.Error(), "insert batch of 2")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PostsIngested.WithLabelValues("failed")))
}

func TestIngestor_RejectsAfterClose(t *testing.T) {
	w := &fakeWriter{}
	ig := NewIngestor(w, 10, 10, time.Hour, quietLog(), metrics.NewNop())
	ig.Start(context.Background())

	require.True(t, ig.Enqueue(post(1)))
	ig.Close()
	ig.Close()

	assert.False(t, ig.Enqueue(post(2)))
	assert.ErrorIs(t, ig.Submit(context.Background(), post(3)), ErrClosed)
	require.NoError(t, ig.Wait())
	assert.Equal(t, 1, w.total())
}
