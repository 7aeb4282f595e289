package transfers

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStateMachineTransitionIf(t *testing.T) {
	sm := NewStateMachine()
	if sm.Status() != StatusWaiting {
		t.Fatalf("initial status = %v, want %v", sm.Status(), StatusWaiting)
	}
	if sm.TransitionIf(StatusInProgress, StatusTriggerable) {
		t.Error("transition from waiting matched triggerable")
	}
	if !sm.TransitionIf(StatusTriggerable, StatusWaiting) {
		t.Error("transition from waiting did not match")
	}
	if !sm.TransitionIf(StatusInProgress, StatusWaiting, StatusTriggerable) {
		t.Error("multi-source transition did not match")
	}
	if sm.Status() != StatusInProgress {
		t.Errorf("status = %v, want %v", sm.Status(), StatusInProgress)
	}
}

func TestStateMachineWaitTriggerable(t *testing.T) {
	sm := NewStateMachine()
	done := make(chan error, 1)
	go func() {
		done <- sm.WaitTriggerable()
	}()

	select {
	case <-done:
		t.Fatal("WaitTriggerable returned before the stream warmed up")
	case <-time.After(10 * time.Millisecond):
	}

	sm.Transition(StatusTriggerable)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitTriggerable = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitTriggerable did not wake on transition")
	}
}

func TestStateMachineTerminateReleasesWaiters(t *testing.T) {
	sm := NewStateMachine()
	trigger := make(chan error, 1)
	outcome := make(chan error, 1)
	go func() {
		trigger <- sm.WaitTriggerable()
	}()
	go func() {
		_, err := sm.WaitOutcome()
		outcome <- err
	}()

	time.Sleep(10 * time.Millisecond)
	sm.Terminate()

	for name, ch := range map[string]chan error{"trigger": trigger, "outcome": outcome} {
		select {
		case err := <-ch:
			if !errors.Is(err, ErrInterrupted) {
				t.Errorf("%s waiter = %v, want ErrInterrupted", name, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s waiter not released by Terminate", name)
		}
	}
}

func TestStateMachineWaitReadableWakesOnData(t *testing.T) {
	sm := NewStateMachine()
	var have atomic.Bool
	done := make(chan error, 1)
	go func() {
		_, err := sm.WaitReadable(have.Load)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("WaitReadable returned with no data and no outcome")
	case <-time.After(10 * time.Millisecond):
	}

	have.Store(true)
	sm.NotifyData()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitReadable = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitReadable did not wake on NotifyData")
	}
}

func TestStateMachineWaitReadableReturnsOnOutcome(t *testing.T) {
	sm := NewStateMachine()
	done := make(chan CaptureStatus, 1)
	go func() {
		status, _ := sm.WaitReadable(func() bool { return false })
		done <- status
	}()

	time.Sleep(10 * time.Millisecond)
	sm.Transition(StatusError)
	select {
	case status := <-done:
		if status != StatusError {
			t.Errorf("WaitReadable status = %v, want %v", status, StatusError)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitReadable did not return on terminal status")
	}
}

func TestCaptureStatusString(t *testing.T) {
	for status, want := range map[CaptureStatus]string{
		StatusWaiting:     "waiting",
		StatusTriggerable: "triggerable",
		StatusInProgress:  "in-progress",
		StatusError:       "error",
		StatusSuccess:     "success",
	} {
		if got := status.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", int(status), got, want)
		}
	}
}
