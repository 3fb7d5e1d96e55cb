package mvutest

import (
	"errors"
	"sync"
)

// SyncSpawner executes handed work immediately on the caller's
// goroutine instead of deferring it. Task outcomes land in the queue
// before the executing step finishes, which makes test runs fully
// deterministic under a fixed event order.
type SyncSpawner struct{}

func (SyncSpawner) Spawn(task func()) error {
	task()
	return nil
}

// ManualSpawner collects handed work without running it. Tests release
// tasks explicitly with RunNext or RunAll to interleave asynchronous
// completions at chosen points.
type ManualSpawner struct {
	mu    sync.Mutex
	tasks []func()
}

// NewManualSpawner creates an empty manual spawner.
func NewManualSpawner() *ManualSpawner {
	return &ManualSpawner{}
}

func (s *ManualSpawner) Spawn(task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

// Pending returns the number of tasks waiting to run.
func (s *ManualSpawner) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// RunNext runs the oldest pending task. Returns false when none are
// pending.
func (s *ManualSpawner) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	task := s.tasks[0]
	s.tasks[0] = nil
	s.tasks = s.tasks[1:]
	s.mu.Unlock()

	task()
	return true
}

// RunAll runs pending tasks in FIFO order until none remain, including
// tasks spawned by the tasks themselves. Returns the number executed.
func (s *ManualSpawner) RunAll() int {
	ran := 0
	for s.RunNext() {
		ran++
	}
	return ran
}

// ErrSpawnerClosed is the refusal reported by RejectSpawner.
var ErrSpawnerClosed = errors.New("mvutest: spawner closed")

// RejectSpawner refuses all work, for exercising the runtime's
// scheduling-failure path. If Err is nil, ErrSpawnerClosed is returned.
type RejectSpawner struct {
	Err error
}

func (s RejectSpawner) Spawn(func()) error {
	if s.Err != nil {
		return s.Err
	}
	return ErrSpawnerClosed
}
