package transfers

import (
	"errors"
	"sync"
)

// ErrInterrupted is returned from blocking waits when the engine is shutting
// down underneath the caller.
var ErrInterrupted = errors.New("capture interrupted by shutdown")

// CaptureStatus is the lifecycle state of the still capture pipeline.
type CaptureStatus int

const (
	// StatusWaiting means no capture is armed. The stream may still be
	// settling after a mode change.
	StatusWaiting CaptureStatus = iota
	// StatusTriggerable means the video stream has proven itself healthy and
	// a still trigger may be issued.
	StatusTriggerable
	// StatusInProgress means still payloads are being accumulated.
	StatusInProgress
	// StatusError means the capture was disturbed and the buffered frame is
	// unusable.
	StatusError
	// StatusSuccess means a complete frame is buffered and ready to read.
	StatusSuccess
)

func (s CaptureStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusTriggerable:
		return "triggerable"
	case StatusInProgress:
		return "in-progress"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	}
	return "unknown"
}

// StateMachine serializes capture status transitions between the transfer
// worker and readers. Readers park on outcome; the trigger path parks on
// trigger until the stream is warm.
type StateMachine struct {
	mu          sync.Mutex
	status      CaptureStatus
	busy        bool
	terminating bool
	dataSeq     uint64
	outcome     *sync.Cond
	trigger     *sync.Cond
}

func NewStateMachine() *StateMachine {
	sm := &StateMachine{}
	sm.outcome = sync.NewCond(&sm.mu)
	sm.trigger = sync.NewCond(&sm.mu)
	return sm
}

func (sm *StateMachine) Status() CaptureStatus {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.status
}

// Transition moves to the given status unconditionally and wakes all waiters.
func (sm *StateMachine) Transition(to CaptureStatus) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.set(to)
}

// TransitionIf moves to the given status only when the current status is one
// of from. It reports whether the transition happened.
func (sm *StateMachine) TransitionIf(to CaptureStatus, from ...CaptureStatus) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, f := range from {
		if sm.status == f {
			sm.set(to)
			return true
		}
	}
	return false
}

func (sm *StateMachine) set(to CaptureStatus) {
	sm.status = to
	sm.outcome.Broadcast()
	if to == StatusTriggerable {
		sm.trigger.Broadcast()
	}
}

// SetBusy records whether a reader is attached. The worker consults this when
// finalizing a frame: a frame nobody waits for is discarded.
func (sm *StateMachine) SetBusy(busy bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.busy = busy
}

func (sm *StateMachine) Busy() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.busy
}

// Terminate marks the machine as shutting down and releases every waiter.
func (sm *StateMachine) Terminate() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.terminating = true
	sm.outcome.Broadcast()
	sm.trigger.Broadcast()
}

func (sm *StateMachine) Terminating() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.terminating
}

// WaitTriggerable blocks until a still trigger may be issued.
func (sm *StateMachine) WaitTriggerable() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for sm.status != StatusTriggerable && !sm.terminating {
		sm.trigger.Wait()
	}
	if sm.terminating {
		return ErrInterrupted
	}
	return nil
}

// WaitOutcome blocks until the capture reaches a terminal status.
func (sm *StateMachine) WaitOutcome() (CaptureStatus, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for sm.status != StatusSuccess && sm.status != StatusError && !sm.terminating {
		sm.outcome.Wait()
	}
	if sm.terminating {
		return sm.status, ErrInterrupted
	}
	return sm.status, nil
}

// NotifyData wakes readers after the worker appends frame bytes, so reads can
// stream out a frame while its capture is still in progress.
func (sm *StateMachine) NotifyData() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.dataSeq++
	sm.outcome.Broadcast()
}

// WaitReadable blocks until ready reports data, the capture reaches a
// terminal status, or the machine terminates. ready is called without the
// machine's lock held; the data sequence counter closes the window between
// the ready check and the wait.
func (sm *StateMachine) WaitReadable(ready func() bool) (CaptureStatus, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for {
		if sm.terminating {
			return sm.status, ErrInterrupted
		}
		if sm.status == StatusSuccess || sm.status == StatusError {
			return sm.status, nil
		}
		seq := sm.dataSeq
		sm.mu.Unlock()
		ok := ready()
		sm.mu.Lock()
		if ok {
			return sm.status, nil
		}
		if sm.dataSeq != seq {
			continue
		}
		sm.outcome.Wait()
	}
}
