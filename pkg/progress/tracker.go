package progress

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultTickInterval paces the simulated progress updates.
const DefaultTickInterval = 300 * time.Millisecond

const (
	pendingCap = 95 // never show done while still waiting on the model
	maxStep    = 9  // random advance per tick is 1..maxStep
)

// Tracker owns the periodic progress tasks for in-flight generation stages.
// Each task is keyed by a caller-chosen id and lives exactly as long as the
// stage it reports on: Start acquires the ticker, Complete or Fail releases
// it on every exit path.
type Tracker struct {
	mu    sync.Mutex
	tick  time.Duration
	tasks map[string]*task
}

type task struct {
	value  int
	active bool
	done   chan struct{}
}

func NewTracker(tick time.Duration) *Tracker {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &Tracker{
		tick:  tick,
		tasks: make(map[string]*task),
	}
}

// Start begins ticking progress for id from zero. A still-running task under
// the same id is stopped first so at most one ticker exists per id.
func (t *Tracker) Start(id string) {
	t.mu.Lock()
	if prev, ok := t.tasks[id]; ok && prev.active {
		prev.active = false
		close(prev.done)
	}
	tk := &task{active: true, done: make(chan struct{})}
	t.tasks[id] = tk
	t.mu.Unlock()

	go t.run(tk)
}

func (t *Tracker) run(tk *task) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-tk.done:
			return
		case <-ticker.C:
			t.advance(tk)
		}
	}
}

func (t *Tracker) advance(tk *task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !tk.active {
		return
	}
	tk.value += 1 + rand.Intn(maxStep)
	if tk.value > pendingCap {
		tk.value = pendingCap
	}
}

// Complete stops the task and pins its value at 100.
func (t *Tracker) Complete(id string) {
	t.stop(id, 100)
}

// Fail stops the task and drops its value back to zero.
func (t *Tracker) Fail(id string) {
	t.stop(id, 0)
}

func (t *Tracker) stop(id string, final int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[id]
	if !ok || !tk.active {
		return
	}
	tk.active = false
	tk.value = final
	close(tk.done)
}

// Get reports the current progress value and whether the task still runs.
// Unknown ids read as (0, false).
func (t *Tracker) Get(id string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[id]
	if !ok {
		return 0, false
	}
	return tk.value, tk.active
}

// StopAll releases every running task, for component teardown.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, tk := range t.tasks {
		if tk.active {
			tk.active = false
			close(tk.done)
		}
	}
}
