// Package scheduler serializes transcode jobs through a single-flight FIFO
// queue with pre-run cancellation.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bobbin/internal/logging"
)

// Task processes one scheduled file. Errors are contained to the task.
type Task func(ctx context.Context, id uint64, file string) error

type entry struct {
	id   uint64
	file string
}

// Scheduler runs at most one task at a time, in schedule order. Every
// schedule call gets a strictly increasing id; only tasks that have not yet
// started can be cancelled.
type Scheduler struct {
	process Task
	delay   time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	queue     []entry
	ids       map[string]uint64
	nextID    uint64
	runningID uint64
	running   bool

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a scheduler. The delay is the settle window between two
// tasks, letting just-written files stop looking like fresh inputs.
func New(process Task, delay time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		process: process,
		delay:   delay,
		logger:  logging.WithComponent(logger, "scheduler"),
		ids:     make(map[string]uint64),
		wake:    make(chan struct{}, 1),
	}
}

// Start launches the queue loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Close drains the queue and stops the loop; pending tasks never execute.
func (s *Scheduler) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	dropped := len(s.queue)
	s.queue = nil
	s.ids = make(map[string]uint64)
	s.mu.Unlock()
	if dropped > 0 {
		s.logger.Info("queue drained on shutdown", logging.Int("dropped", dropped))
	}
}

// Schedule enqueues a file and returns its task id.
func (s *Scheduler) Schedule(file string) uint64 {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.queue = append(s.queue, entry{id: id, file: file})
	s.ids[file] = id
	s.mu.Unlock()

	s.logger.Debug("task scheduled", logging.Uint64(logging.FieldTaskID, id), logging.String("file", file))
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return id
}

// Cancel removes a queued task by file identity. A task that is already
// running, or unknown, is left alone.
func (s *Scheduler) Cancel(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ids[file]
	if !ok || id <= s.runningID {
		return
	}
	for i, queued := range s.queue {
		if queued.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
	delete(s.ids, file)
	s.logger.Debug("task cancelled", logging.Uint64(logging.FieldTaskID, id), logging.String("file", file))
}

// Pending reports how many tasks wait in the queue.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Idle reports whether the queue is empty and nothing is running.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0 && !s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		task, ok := s.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		s.logger.Info("task started",
			logging.Uint64(logging.FieldTaskID, task.id),
			logging.String("file", task.file))
		if err := s.process(ctx, task.id, task.file); err != nil {
			s.logger.Error("task failed",
				logging.Uint64(logging.FieldTaskID, task.id),
				logging.Error(err))
		} else {
			s.logger.Info("task finished", logging.Uint64(logging.FieldTaskID, task.id))
		}
		s.finish(task)

		if ctx.Err() != nil {
			return
		}
		// Settle window before the next task.
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}
}

func (s *Scheduler) pop() (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return entry{}, false
	}
	task := s.queue[0]
	s.queue = s.queue[1:]
	s.runningID = task.id
	s.running = true
	return task, true
}

func (s *Scheduler) finish(task entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ids[task.file]; ok && id == task.id {
		delete(s.ids, task.file)
	}
	s.running = false
}
