// Package scheduler implements the cooperative task scheduler (§4.11,
// §5): a single logical thread of control shared by the top-level
// script and every task it spawns. Go has no first-class stackful
// coroutine short of a goroutine, so each SLIP task runs on its own
// goroutine; a single-slot baton channel per task enforces that only
// one task's Go code ever executes at a time, giving the required
// single-threaded cooperative semantics (no two tasks observe
// interleaved side effects) while using goroutines purely as the
// underlying suspension mechanism — grounded on the teacher's
// autopoiesis/yaegi_executor.go pattern of driving a sandboxed
// evaluation via a context and a result channel, generalized here to
// a full ready queue rather than one synchronous call (see DESIGN.md).
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"slipinterp/internal/logging"
	"slipinterp/internal/value"
)

// Status reports the terminal state observed after the scheduler
// drains — used by tests and by Shutdown.
type Status int

const (
	StatusDone Status = iota
	StatusCancelled
	StatusErrored
)

// Task is one cooperative task's bookkeeping. Script code only ever
// sees its ID via a *value.TaskHandle; every other field is
// scheduler-private.
type Task struct {
	ID     string
	HostID string

	ctx    context.Context
	cancel context.CancelFunc

	turn    chan struct{} // scheduler -> task: "you have the baton"
	yielded chan struct{} // task -> scheduler: "I've paused or finished"

	err  error
	done bool
}

// Scheduler owns the ready queue, the sleep set, and the registry of
// live tasks. One Scheduler belongs to exactly one interpreter
// instance (§4.11: "each interpreter instance is single-threaded
// cooperative").
type Scheduler struct {
	mu sync.Mutex

	ready    []*Task
	sleeping []*sleepEntry
	all      map[string]*Task
	byHost   map[string][]*Task

	wg sync.WaitGroup
}

type sleepEntry struct {
	task *Task
	at   time.Time
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{
		all:    make(map[string]*Task),
		byHost: make(map[string][]*Task),
	}
}

// Spawn registers a new task running body and enqueues it ready to
// run on the next Drain. body receives the task's own context, which
// is cancelled by CancelHost/Shutdown; it should check ctx.Err() at
// its own suspension points (the eval package wires this through
// auto-yield and sleep/channel ops).
func (s *Scheduler) Spawn(parent context.Context, hostID string, body func(ctx context.Context, self *Task) error) *value.TaskHandle {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		ID:      uuid.NewString(),
		HostID:  hostID,
		ctx:     ctx,
		cancel:  cancel,
		turn:    make(chan struct{}),
		yielded: make(chan struct{}),
	}

	s.mu.Lock()
	s.all[t.ID] = t
	s.byHost[hostID] = append(s.byHost[hostID], t)
	s.ready = append(s.ready, t)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-t.turn
		err := body(ctx, t)
		s.mu.Lock()
		t.done = true
		t.err = err
		s.mu.Unlock()
		close(t.yielded)
	}()

	return &value.TaskHandle{ID: t.ID, HostID: hostID, SchedState: t}
}

// Err returns the error the task's body returned, valid only after it
// has finished (check via value.TaskHandle + TaskOf + polling, or via
// Wait for the whole scheduler).
func (t *Task) Err() error { return t.err }

// Context returns the task's cancellation context, used by channel
// send/receive builtins to stop retrying once the task is cancelled.
func (t *Task) Context() context.Context { return t.ctx }

// Done reports whether the task's body has returned.
func (t *Task) Done() bool { return t.done }

// Yield implements the mandatory auto-yield point (§4.11): the
// currently-running task (identified by its *Task, threaded through
// the evaluator as in_task_context state) re-enqueues itself at the
// tail of the ready queue and blocks until the scheduler hands it the
// turn again. Calling Yield with a nil task (top-level, non-task
// context) is a no-op.
func (s *Scheduler) Yield(t *Task) error {
	if t == nil {
		return nil
	}
	if t.ctx.Err() != nil {
		return t.ctx.Err()
	}
	s.mu.Lock()
	s.ready = append(s.ready, t)
	s.mu.Unlock()

	close(t.yielded)
	t.yielded = make(chan struct{})
	<-t.turn
	if t.ctx.Err() != nil {
		return t.ctx.Err()
	}
	return nil
}

// Sleep suspends t for d, or requeues it at the ready tail if d<=0
// (§4.11's sleep(0) = yield).
func (s *Scheduler) Sleep(t *Task, d time.Duration) error {
	if t == nil {
		if d > 0 {
			time.Sleep(d)
		}
		return nil
	}
	if d <= 0 {
		return s.Yield(t)
	}
	s.mu.Lock()
	s.sleeping = append(s.sleeping, &sleepEntry{task: t, at: time.Now().Add(d)})
	s.mu.Unlock()

	close(t.yielded)
	t.yielded = make(chan struct{})
	<-t.turn
	if t.ctx.Err() != nil {
		return t.ctx.Err()
	}
	return nil
}

// CancelHost cancels every task registered under hostID and wakes any
// that are sleeping or otherwise idle so they observe cancellation
// promptly (§4.11, §5).
func (s *Scheduler) CancelHost(hostID string) {
	s.mu.Lock()
	tasks := s.byHost[hostID]
	for _, t := range tasks {
		t.cancel()
	}
	s.promoteSleepingLocked(tasks)
	s.mu.Unlock()
	logging.Scheduler("cancel-tasks %q: cancelled %d task(s)", hostID, len(tasks))
}

// ShutdownAll cancels every live task (interpreter-wide shutdown).
func (s *Scheduler) ShutdownAll() {
	s.mu.Lock()
	var all []*Task
	for _, t := range s.all {
		t.cancel()
		all = append(all, t)
	}
	s.promoteSleepingLocked(all)
	s.mu.Unlock()
	logging.Scheduler("shutdown: cancelled %d live task(s)", len(all))
}

func (s *Scheduler) promoteSleepingLocked(targets []*Task) {
	if len(targets) == 0 {
		return
	}
	want := make(map[*Task]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}
	var kept []*sleepEntry
	for _, e := range s.sleeping {
		if want[e.task] {
			s.ready = append(s.ready, e.task)
		} else {
			kept = append(kept, e)
		}
	}
	s.sleeping = kept
}

// Drain runs the scheduler loop until the ready queue and sleep set
// are both empty, handing each ready task the baton in FIFO order and
// waiting for it to pause or finish before advancing (§4.11
// ordering: "between tasks, fairness is at minimum FIFO"). It blocks
// the calling goroutine — the caller (interp.Interpreter) drives this
// after top-level evaluation so spawned tasks actually get to run.
func (s *Scheduler) Drain(ctx context.Context) {
	for {
		s.mu.Lock()
		if len(s.ready) == 0 {
			if len(s.sleeping) == 0 {
				s.mu.Unlock()
				return
			}
			wait := s.earliestSleepLocked()
			sleeping := len(s.sleeping)
			s.mu.Unlock()
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				logging.SchedulerWarn("drain stalled: context done with %d task(s) still sleeping", sleeping)
			}
			s.wakeDueLocked()
			continue
		}
		next := s.ready[0]
		s.ready = s.ready[1:]
		s.mu.Unlock()

		next.turn <- struct{}{}
		<-next.yielded

		s.mu.Lock()
		if next.done {
			delete(s.all, next.ID)
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) earliestSleepLocked() time.Duration {
	earliest := s.sleeping[0].at
	for _, e := range s.sleeping[1:] {
		if e.at.Before(earliest) {
			earliest = e.at
		}
	}
	d := time.Until(earliest)
	if d < 0 {
		d = 0
	}
	return d
}

func (s *Scheduler) wakeDueLocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var kept []*sleepEntry
	for _, e := range s.sleeping {
		if !e.at.After(now) {
			s.ready = append(s.ready, e.task)
		} else {
			kept = append(kept, e)
		}
	}
	s.sleeping = kept
}

// Wait blocks until every spawned task goroutine has returned. Tests
// use this (with goleak) to assert clean shutdown.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// TaskOf extracts the scheduler's *Task from a value.TaskHandle's
// opaque SchedState, returning nil if handle is nil or foreign.
func TaskOf(handle *value.TaskHandle) *Task {
	if handle == nil {
		return nil
	}
	t, _ := handle.SchedState.(*Task)
	return t
}
