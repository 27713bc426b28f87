package diagram

import (
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call and reports whether it was still pending.
	Stop() bool
}

// Scheduler runs f after d. time.AfterFunc is the default.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer runs at most one pending task. Scheduling a task cancels and
// replaces the one pending, so a burst of calls results in a single run
// after the burst has been quiet for the delay.
//
// Without an executor the timer never runs the task itself. It marks the
// task due and signals [Debouncer.Ready]; the owning goroutine then calls
// [Debouncer.RunDue] (or [Debouncer.Flush]). With an executor the due task
// is handed to it from the timer goroutine, and the executor must marshal it
// back to the owner.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	sched    Scheduler
	executor func(func())
	ready    chan struct{}
	timer    Timer
	task     func()
	due      bool
	gen      uint64
}

// NewDebouncer returns a debouncer. A nil scheduler uses time.AfterFunc. A
// nil executor leaves due tasks for the owner to run.
func NewDebouncer(delay time.Duration, sched Scheduler, executor func(func())) *Debouncer {
	if sched == nil {
		sched = timeScheduler{}
	}
	return &Debouncer{
		delay:    delay,
		sched:    sched,
		executor: executor,
		ready:    make(chan struct{}, 1),
	}
}

// Delay returns the debounce delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Ready receives a value whenever a pending task becomes due and no executor
// is set. A receive may be stale; RunDue then reports false.
func (d *Debouncer) Ready() <-chan struct{} { return d.ready }

// Schedule arms the debouncer with task, replacing any pending task.
func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.task = task
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a task is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Due reports whether the pending task's delay has elapsed.
func (d *Debouncer) Due() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.due
}

// Cancel drops the pending task and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.task != nil
	d.stopLocked()
	return had
}

// Flush runs the pending task immediately on the calling goroutine and
// reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	task := d.task
	d.stopLocked()
	d.mu.Unlock()
	if task == nil {
		return false
	}
	task()
	return true
}

// RunDue runs the pending task on the calling goroutine if its delay has
// elapsed, and reports whether it ran.
func (d *Debouncer) RunDue() bool {
	d.mu.Lock()
	if !d.due {
		d.mu.Unlock()
		return false
	}
	task := d.task
	d.stopLocked()
	d.mu.Unlock()
	task()
	return true
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
	d.due = false
	d.gen++
	select {
	case <-d.ready:
	default:
	}
}

// fire handles the timer for generation gen. It is a no-op if the task was
// replaced or cancelled since.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	if d.executor == nil {
		d.due = true
		d.timer = nil
		d.mu.Unlock()
		select {
		case d.ready <- struct{}{}:
		default:
		}
		return
	}
	task := d.task
	d.task, d.timer = nil, nil
	d.gen++
	d.mu.Unlock()
	d.executor(task)
}
