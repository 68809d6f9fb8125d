package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BatchInserter is the interface used by Collector to persist events.
// It exists to allow testing without a real database.
type BatchInserter interface {
	BatchInsert(ctx context.Context, events []Event) error
}

// Collector buffers audit events in memory and periodically flushes them to
// the store in batches. It is safe for concurrent use. Losing a batch on a
// hard crash is acceptable; the audit trail is advisory, not transactional.
type Collector struct {
	store         BatchInserter
	buffer        []Event
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	done          chan struct{}
}

// NewCollector creates a new Collector that flushes to the given store when
// the buffer reaches batchSize or every flushInterval, whichever comes first.
func NewCollector(store BatchInserter, batchSize int, flushInterval time.Duration) *Collector {
	return &Collector{
		store:         store,
		buffer:        make([]Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}
}

// Start begins a background loop that flushes buffered events on a timer.
// It blocks until Stop is called or the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-ctx.Done():
			c.flush()
			return
		case <-c.done:
			c.flush()
			return
		}
	}
}

// Record adds an event to the buffer. If the buffer reaches batchSize,
// a flush is triggered immediately.
func (c *Collector) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, ev)
	shouldFlush := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if shouldFlush {
		c.flush()
	}
}

// flush drains all buffered events and writes them to the store. It logs
// errors rather than returning them so callers are not blocked.
func (c *Collector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]Event, 0, c.batchSize)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.store.BatchInsert(ctx, batch); err != nil {
		slog.Error("failed to flush audit events", "count", len(batch), "error", err)
	}
}

// Stop signals the background loop to exit and performs a final flush.
func (c *Collector) Stop() {
	close(c.done)
}
