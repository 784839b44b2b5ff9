package writeback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
)

const defaultQueueSize = 64

// Task is one persistence write.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Writer runs persistence tasks off the caller's path, one at a time, in submission order.
// In synchronous mode tasks run inline before Submit returns.
type Writer struct {
	logger *logging.Logger
	async  bool

	pool   *ants.Pool
	queue  chan queued
	wg     sync.WaitGroup
	closed atomic.Bool
	mu     sync.RWMutex
}

type queued struct {
	ctx  context.Context
	task Task
}

type Config struct {
	Async     bool
	QueueSize int
}

func New(cfg Config, logger *logging.Logger) (*Writer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	w := &Writer{logger: logger, async: cfg.Async}
	if !cfg.Async {
		return w, nil
	}

	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("create write pool: %w", err)
	}
	w.pool = pool
	w.queue = make(chan queued, size)
	if err := pool.Submit(w.drain); err != nil {
		pool.Release()
		return nil, fmt.Errorf("start write worker: %w", err)
	}
	return w, nil
}

// NewSync returns a writer that runs every task inline.
func NewSync(logger *logging.Logger) *Writer {
	w, _ := New(Config{}, logger)
	return w
}

// Submit schedules the task. The task context keeps the values of ctx but not its cancellation,
// so a write outlives the request that caused it.
func (w *Writer) Submit(ctx context.Context, task Task) {
	if task.Run == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if !w.async {
		w.run(ctx, task)
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		w.logger.WarnContext(ctx, "drop write after writer closed", "task", task.Name)
		return
	}
	w.wg.Add(1)
	w.queue <- queued{ctx: ctx, task: task}
}

// Flush blocks until every task submitted so far has finished.
func (w *Writer) Flush() {
	w.wg.Wait()
}

// Close flushes pending tasks and stops the worker. Later submissions are dropped.
func (w *Writer) Close() {
	if !w.async {
		return
	}
	w.mu.Lock()
	if w.closed.Swap(true) {
		w.mu.Unlock()
		return
	}
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	w.pool.Release()
}

func (w *Writer) drain() {
	for item := range w.queue {
		w.run(item.ctx, item.task)
		w.wg.Done()
	}
}

func (w *Writer) run(ctx context.Context, task Task) {
	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = task.Run(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		w.logger.ErrorContext(ctx, "write task panicked", "task", task.Name, "panic", recovered.Value, "stack", string(recovered.Stack))
		return
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "write task failed", "task", task.Name, "error", err)
		return
	}
	w.logger.DebugContext(ctx, "write task done", "task", task.Name)
}
