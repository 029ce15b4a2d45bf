package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/metrics"
)

// ErrClosed is returned by Submit once Close has been called.
var ErrClosed = errors.New("ingest: closed")

// BatchWriter persists a batch and reports how many rows were new.
type BatchWriter interface {
	InsertBatch(ctx context.Context, items []domain.Post) (int64, error)
}

type Ingestor struct {
	queue        chan domain.Post
	writer       BatchWriter
	batchMaxSize int
	batchMaxWait time.Duration
	log          *logrus.Entry
	metrics      *metrics.Metrics
	done         chan struct{}

	mu     sync.RWMutex
	closed bool

	// err is the first failed flush; written by the loop before done closes.
	err error
}

func NewIngestor(writer BatchWriter, queueMaxSize, batchMaxSize int, batchMaxWait time.Duration, log *logrus.Entry, m *metrics.Metrics) *Ingestor {
	if batchMaxSize <= 0 {
		batchMaxSize = 1
	}
	return &Ingestor{
		queue:        make(chan domain.Post, queueMaxSize),
		writer:       writer,
		batchMaxSize: batchMaxSize,
		batchMaxWait: batchMaxWait,
		log:          log.WithField("component", "ingest"),
		metrics:      m,
		done:         make(chan struct{}),
	}
}

// Start runs the batching loop until ctx is cancelled or Close is called.
// On cancel, posts already queued are drained and flushed on a context that
// no longer carries the cancellation.
func (ig *Ingestor) Start(ctx context.Context) {
	go func() {
		defer close(ig.done)

		batch := make([]domain.Post, 0, ig.batchMaxSize)
		t := time.NewTimer(ig.batchMaxWait)
		defer t.Stop()

		resetTimer := func() {
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
			t.Reset(ig.batchMaxWait)
		}

		flush := func(ctx context.Context) {
			ig.metrics.IngestQueueLength.Set(float64(len(ig.queue)))
			if len(batch) == 0 {
				resetTimer()
				return
			}
			affected, err := ig.writer.InsertBatch(ctx, batch)
			if err != nil {
				if ig.err == nil {
					ig.err = fmt.Errorf("insert batch of %d: %w", len(batch), err)
				}
				ig.metrics.PostsIngested.WithLabelValues("failed").Add(float64(len(batch)))
				ig.log.WithError(err).WithField("dropped", len(batch)).Error("batch insert failed")
			} else {
				ig.metrics.PostsIngested.WithLabelValues("inserted").Add(float64(affected))
				ig.metrics.PostsIngested.WithLabelValues("duplicate").Add(float64(int64(len(batch)) - affected))
				ig.log.WithFields(logrus.Fields{"inserted": affected, "size": len(batch)}).Debug("batch insert ok")
			}
			batch = batch[:0]
			resetTimer()
		}

		for {
			select {
			case <-ctx.Done():
				ctx = context.WithoutCancel(ctx)
				for {
					select {
					case p, ok := <-ig.queue:
						if !ok {
							flush(ctx)
							return
						}
						batch = append(batch, p)
						if len(batch) >= ig.batchMaxSize {
							flush(ctx)
						}
					default:
						flush(ctx)
						return
					}
				}
			case p, ok := <-ig.queue:
				if !ok {
					flush(ctx)
					return
				}
				batch = append(batch, p)
				if len(batch) >= ig.batchMaxSize {
					flush(ctx)
				}
			case <-t.C:
				flush(ctx)
			}
		}
	}()
}

// Enqueue never blocks; false means the queue is full or closed.
func (ig *Ingestor) Enqueue(p domain.Post) bool {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	if ig.closed {
		return false
	}
	select {
	case ig.queue <- p:
		return true
	default:
		return false
	}
}

// Submit blocks until the post is queued or ctx is done.
func (ig *Ingestor) Submit(ctx context.Context, p domain.Post) error {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	if ig.closed {
		return ErrClosed
	}
	select {
	case ig.queue <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting posts; the loop flushes what is queued and exits.
// Calling it more than once is a no-op.
func (ig *Ingestor) Close() {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	if ig.closed {
		return
	}
	ig.closed = true
	close(ig.queue)
}

// Wait blocks until the loop started by Start has flushed and exited, and
// returns the first batch insert error, if any.
func (ig *Ingestor) Wait() error {
	<-ig.done
	return ig.err
}
