package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWorkerSerializesTasksPerCourse(t *testing.T) {
	worker := NewWorker()

	var mu sync.Mutex
	var order []int

	firstRunning := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(3)

	worker.Enqueue(1, "first", func(ctx context.Context) error {
		defer wg.Done()
		close(firstRunning)
		<-release
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		return nil
	})

	<-firstRunning

	worker.Enqueue(1, "second", func(ctx context.Context) error {
		defer wg.Done()
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		return nil
	})
	worker.Enqueue(1, "third", func(ctx context.Context) error {
		defer wg.Done()
		mu.Lock()
		order = append(order, 3)
		mu.Unlock()
		return nil
	})

	// The first task is still blocked, nothing else may have run yet.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	ranEarly := len(order)
	mu.Unlock()
	if ranEarly != 0 {
		t.Fatalf("expected no tasks to finish while the first is blocked, got %d", ranEarly)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected FIFO order [1 2 3], got %v", order)
	}
}

func TestWorkerRunsDifferentCoursesConcurrently(t *testing.T) {
	worker := NewWorker()

	blocked := make(chan struct{})
	release := make(chan struct{})
	otherDone := make(chan struct{})

	worker.Enqueue(1, "blocker", func(ctx context.Context) error {
		close(blocked)
		<-release
		return nil
	})
	<-blocked

	worker.Enqueue(2, "other", func(ctx context.Context) error {
		close(otherDone)
		return nil
	})

	select {
	case <-otherDone:
	case <-time.After(2 * time.Second):
		t.Fatal("task for course 2 did not run while course 1 was busy")
	}
	close(release)
}

func TestWorkerDoReturnsTaskError(t *testing.T) {
	worker := NewWorker()
	wantErr := errors.New("task failed")

	err := worker.Do(context.Background(), 1, "failing", func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}

	err = worker.Do(context.Background(), 1, "ok", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestWorkerDoWaitsBehindQueuedTasks(t *testing.T) {
	worker := NewWorker()

	release := make(chan struct{})
	firstRunning := make(chan struct{})
	var mu sync.Mutex
	var order []string

	worker.Enqueue(1, "first", func(ctx context.Context) error {
		close(firstRunning)
		<-release
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
		return nil
	})
	<-firstRunning

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	err := worker.Do(context.Background(), 1, "second", func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected Do to wait for the queued task, got order %v", order)
	}
}

func TestWorkerDoHonorsContextCancellation(t *testing.T) {
	worker := NewWorker()

	release := make(chan struct{})
	taskDone := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := worker.Do(ctx, 1, "slow", func(taskCtx context.Context) error {
		<-release
		close(taskDone)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The task itself still runs to completion after the caller gave up.
	close(release)
	select {
	case <-taskDone:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not finish after the caller context was cancelled")
	}
}

func TestWorkerRecoversFromPanics(t *testing.T) {
	worker := NewWorker()

	err := worker.Do(context.Background(), 1, "explode", func(ctx context.Context) error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected a panic error, got %v", err)
	}

	// The queue must still work for the same course afterwards.
	err = worker.Do(context.Background(), 1, "after", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("worker wedged after a panic: %v", err)
	}
}
