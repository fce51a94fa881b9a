package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabula/pkg/engine"
)

func TestAddAndProcess(t *testing.T) {
	q := New(func(_ context.Context, concept engine.Concept) (*engine.Result, error) {
		return &engine.Result{Title: concept.Theme}, nil
	})
	q.Start()
	t.Cleanup(q.Stop)

	resCh, errCh, err := q.Add(context.Background(), engine.Concept{Theme: "失楽園"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	select {
	case res := <-resCh:
		if res.Title != "失楽園" {
			t.Errorf("result title = %q", res.Title)
		}
	case err := <-errCh:
		t.Fatalf("job failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("job never completed")
	}
}

func TestRunnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("backend down")
	q := New(func(context.Context, engine.Concept) (*engine.Result, error) {
		return nil, wantErr
	})
	q.Start()
	t.Cleanup(q.Stop)

	resCh, errCh, err := q.Add(context.Background(), engine.Concept{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	select {
	case <-resCh:
		t.Fatal("failed job delivered a result")
	case err := <-errCh:
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job never completed")
	}
}

func TestCancelledJobSkipped(t *testing.T) {
	q := New(func(context.Context, engine.Concept) (*engine.Result, error) {
		t.Error("runner executed a cancelled job")
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, errCh, err := q.Add(ctx, engine.Concept{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Start after cancelling so the worker sees the dead context.
	q.Start()
	t.Cleanup(q.Stop)

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled job never reported")
	}
}

func TestAddWhenFull(t *testing.T) {
	q := New(func(context.Context, engine.Concept) (*engine.Result, error) {
		return &engine.Result{}, nil
	})
	// Never started, so the buffer fills and stays full.
	for i := 0; i < cap(q.jobs); i++ {
		if _, _, err := q.Add(context.Background(), engine.Concept{}); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if _, _, err := q.Add(context.Background(), engine.Concept{}); err == nil {
		t.Fatal("Add accepted a job beyond capacity")
	}
}

func TestAddAfterStop(t *testing.T) {
	q := New(func(context.Context, engine.Concept) (*engine.Result, error) {
		return &engine.Result{}, nil
	})
	// Buffer left empty: the send would succeed if stop were not
	// checked first.
	q.Stop()
	if _, _, err := q.Add(context.Background(), engine.Concept{}); err == nil || err.Error() != "queue stopped" {
		t.Errorf("Add after stop = %v, want queue stopped", err)
	}
}
