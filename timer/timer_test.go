package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	m := NewManager()
	defer m.Close()

	fired := make(chan struct{})
	m.Schedule(50*time.Millisecond, 0, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestStopPreventsFiring(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var fired atomic.Int32
	id := m.Schedule(500*time.Millisecond, 0, func() {
		fired.Add(1)
	})

	if !m.Stop(id) {
		t.Fatal("Stop should report the timer as still pending")
	}
	time.Sleep(800 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("stopped timer fired %d times", n)
	}
}

func TestStopAfterFiringReportsFalse(t *testing.T) {
	m := NewManager()
	defer m.Close()

	fired := make(chan struct{})
	id := m.Schedule(50*time.Millisecond, 0, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}

	if m.Stop(id) {
		t.Error("Stop after the final firing should report false")
	}
}

func TestIntervalRepeats(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var count atomic.Int32
	id := m.Schedule(50*time.Millisecond, 100*time.Millisecond, func() {
		count.Add(1)
	})

	deadline := time.Now().Add(3 * time.Second)
	for count.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 3 firings, got %d", count.Load())
		}
		time.Sleep(20 * time.Millisecond)
	}

	m.Stop(id)
	at := count.Load()
	time.Sleep(400 * time.Millisecond)
	if after := count.Load(); after > at+1 {
		t.Errorf("timer kept firing after Stop: %d -> %d", at, after)
	}
}

func TestCloseStopsPendingTimers(t *testing.T) {
	m := NewManager()

	var fired atomic.Int32
	m.Schedule(200*time.Millisecond, 0, func() {
		fired.Add(1)
	})

	m.Close()
	time.Sleep(500 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("timer fired %d times after Close", n)
	}
}
