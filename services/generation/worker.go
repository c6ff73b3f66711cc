package generation

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Worker schedules generation tasks with one rule: at most one task per
// course id runs at any time, in FIFO order. Tasks for different courses run
// concurrently. This is the unit of concurrency behind the fire-and-forget
// entry points; the persisted course status is the only progress signal.
type Worker struct {
	mu     sync.Mutex
	queues map[int][]*workerTask
	active map[int]bool
}

type workerTask struct {
	name string
	fn   func(ctx context.Context) error
	done chan error
}

func NewWorker() *Worker {
	return &Worker{
		queues: make(map[int][]*workerTask),
		active: make(map[int]bool),
	}
}

// Enqueue schedules fn for the course and returns immediately.
func (w *Worker) Enqueue(courseID int, name string, fn func(ctx context.Context) error) {
	w.submit(courseID, &workerTask{name: name, fn: fn})
}

// Do schedules fn for the course and waits for it to finish, so the call
// still serializes behind any queued work for the same course. If ctx ends
// first, Do returns the context error; the task itself still runs.
func (w *Worker) Do(ctx context.Context, courseID int, name string, fn func(ctx context.Context) error) error {
	task := &workerTask{name: name, fn: fn, done: make(chan error, 1)}
	w.submit(courseID, task)

	select {
	case err := <-task.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) submit(courseID int, task *workerTask) {
	w.mu.Lock()
	w.queues[courseID] = append(w.queues[courseID], task)
	if !w.active[courseID] {
		w.active[courseID] = true
		go w.drain(courseID)
	}
	w.mu.Unlock()

	log.Printf("[INFO] Enqueued %s task for course %d", task.name, courseID)
}

func (w *Worker) drain(courseID int) {
	for {
		w.mu.Lock()
		queue := w.queues[courseID]
		if len(queue) == 0 {
			w.active[courseID] = false
			delete(w.queues, courseID)
			w.mu.Unlock()
			return
		}
		task := queue[0]
		w.queues[courseID] = queue[1:]
		w.mu.Unlock()

		err := w.run(courseID, task)
		if task.done != nil {
			task.done <- err
		}
	}
}

func (w *Worker) run(courseID int, task *workerTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Task %s for course %d panicked: %v", task.name, courseID, r)
			err = fmt.Errorf("task %s panicked: %v", task.name, r)
		}
	}()

	log.Printf("[INFO] Running %s task for course %d", task.name, courseID)
	err = task.fn(context.Background())
	if err != nil {
		log.Printf("[ERROR] Task %s for course %d finished with error: %v", task.name, courseID, err)
	} else {
		log.Printf("[INFO] Task %s for course %d finished", task.name, courseID)
	}
	return err
}
