package convert

import (
	"sync"
	"sync/atomic"
)

// Status texts reported through State.
const (
	StatusIdle       = "Idle"
	StatusProcessing = "Processing..."
	StatusExtracting = "Extracting frames..."
	StatusCancelled  = "Cancelled"
	StatusNoInput    = "Please select an input video file."

	statusCompletedPrefix = "Completed: "
	statusErrorPrefix     = "Error: "
)

// Phase is the coarse lifecycle position of the controller.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRunning    Phase = "running"
	PhaseCancelling Phase = "cancelling"
)

// Snapshot is an immutable copy of State for polling readers.
type Snapshot struct {
	Status    string
	Progress  int
	Cancelled bool
	Phase     Phase
}

// Done reports whether the snapshot describes a finished or idle run.
func (s Snapshot) Done() bool { return s.Phase == PhaseIdle }

// State is the status, progress and cancellation flag shared between a
// running conversion and its observers. Status is guarded by a mutex;
// progress and the cancellation flag are atomics.
type State struct {
	mu     sync.Mutex
	status string
	phase  Phase

	progress atomic.Int32
	cancel   atomic.Bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewState returns an idle state.
func NewState() *State {
	return &State{status: StatusIdle, phase: PhaseIdle}
}

// Reset prepares the state for a new run: status "Processing...", progress 0,
// cancellation cleared.
func (s *State) Reset() {
	s.mu.Lock()
	s.status = StatusProcessing
	s.phase = PhaseRunning
	s.progress.Store(0)
	s.cancel.Store(false)
	s.mu.Unlock()
	s.notify()
}

// SetStatus replaces the status text.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.notify()
}

// SetProgress raises progress to percent, clamped to 0..100. Lower values are
// ignored so progress never moves backwards within a run.
func (s *State) SetProgress(percent int) {
	percent = min(max(percent, 0), 100)
	for {
		current := s.progress.Load()
		if int32(percent) <= current {
			return
		}
		if s.progress.CompareAndSwap(current, int32(percent)) {
			s.notify()
			return
		}
	}
}

// RequestCancellation asks the running conversion to stop before its next frame.
func (s *State) RequestCancellation() {
	s.mu.Lock()
	s.cancel.Store(true)
	if s.phase == PhaseRunning {
		s.phase = PhaseCancelling
	}
	s.mu.Unlock()
	s.notify()
}

// CancelRequested reports whether cancellation has been requested.
func (s *State) CancelRequested() bool { return s.cancel.Load() }

// Progress returns the current percentage.
func (s *State) Progress() int { return int(s.progress.Load()) }

// Status returns the current status text.
func (s *State) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Status:    s.status,
		Progress:  int(s.progress.Load()),
		Cancelled: s.cancel.Load(),
		Phase:     s.phase,
	}
}

// Subscribe registers fn to be called synchronously after every change. The
// returned function removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// begin resets the state unless a controller already did so for this run.
func (s *State) begin() {
	s.mu.Lock()
	idle := s.phase == PhaseIdle
	s.mu.Unlock()
	if idle {
		s.Reset()
	}
}

// finish returns the state to idle, keeping the final status and progress.
func (s *State) finish(status string) {
	s.mu.Lock()
	s.status = status
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	s.subMu.Lock()
	if len(s.subs) == 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
