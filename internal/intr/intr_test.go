package intr

import (
	"testing"
	"time"
)

func TestRealCheckerStop(t *testing.T) {
	c := New()
	if err := c.Check(); err != nil {
		t.Fatalf("expected no interruption before Stop, got %v", err)
	}
	c.Stop()
	if err := c.Check(); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted after Stop, got %v", err)
	}
}

func TestRealCheckerFirstCheckNeverInterruptible(t *testing.T) {
	c := NewFirst()
	c.Stop()
	if err := c.Check(); err != nil {
		t.Fatalf("first Check on a NewFirst checker must always pass, got %v", err)
	}
	if err := c.Check(); err != ErrInterrupted {
		t.Fatalf("second Check should report the already-requested stop, got %v", err)
	}
}

func TestRealCheckerTimeout(t *testing.T) {
	c := New()
	c.SetTimeout(time.Now().Add(-time.Second), time.Millisecond)
	if err := c.Check(); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted for an already-elapsed timeout, got %v", err)
	}
	c.ClearTimeout()
	if err := c.Check(); err != nil {
		t.Fatalf("expected no interruption after ClearTimeout, got %v", err)
	}
}

func TestRealCheckerReset(t *testing.T) {
	c := New()
	c.Stop()
	c.Reset()
	if err := c.Check(); err != nil {
		t.Fatalf("expected Reset to both clear the stop flag and re-arm the first-iteration pass, got %v", err)
	}
}

func TestCtrlCClosesWithoutSignal(t *testing.T) {
	c := NewCtrlC()
	if err := c.Check(); err != nil {
		t.Fatalf("expected no interruption before SIGINT, got %v", err)
	}
	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not release the monitoring goroutine")
	}
}

func TestEmptyCheckerNeverInterrupts(t *testing.T) {
	var e Empty
	if err := e.Check(); err != nil {
		t.Fatalf("Empty.Check must never fail, got %v", err)
	}
}
