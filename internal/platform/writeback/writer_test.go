package writeback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
)

func TestWriter_AsyncKeepsSubmissionOrder(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Async: true, QueueSize: 4}, logging.NewNop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		w.Submit(context.Background(), Task{
			Name: "record",
			Run: func(context.Context) error {
				if i%7 == 0 {
					time.Sleep(time.Millisecond)
				}
				mu.Lock()
				got = append(got, i)
				mu.Unlock()
				return nil
			},
		})
	}
	w.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("expected 50 writes, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("write %d ran out of order: got %d", i, v)
		}
	}
}

func TestWriter_SurvivesFailuresAndPanics(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Async: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	ran := make(chan struct{}, 1)
	w.Submit(context.Background(), Task{Name: "fails", Run: func(context.Context) error { return errors.New("disk full") }})
	w.Submit(context.Background(), Task{Name: "panics", Run: func(context.Context) error { panic("boom") }})
	w.Submit(context.Background(), Task{Name: "after", Run: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})
	w.Flush()

	select {
	case <-ran:
	default:
		t.Fatalf("writer stopped after a failing task")
	}
}

func TestWriter_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	w := NewSync(logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var taskErr error
	w.Submit(ctx, Task{Name: "save", Run: func(ctx context.Context) error {
		taskErr = ctx.Err()
		return nil
	}})
	if taskErr != nil {
		t.Fatalf("task context should not be canceled, got %v", taskErr)
	}
}

func TestWriter_DropsAfterClose(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Async: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.Close()
	w.Close()

	called := false
	w.Submit(context.Background(), Task{Name: "late", Run: func(context.Context) error {
		called = true
		return nil
	}})
	w.Flush()
	if called {
		t.Fatalf("task ran after close")
	}
}
