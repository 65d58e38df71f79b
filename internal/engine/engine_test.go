package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
)

func TestCalculateTimeoutLevelDerivesMoveCountToGo(t *testing.T) {
	e := &Engine{
		timeControl:   Level(40, 0),
		remainingTime: 4 * time.Minute,
		moveChain:     chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	want := 4 * time.Minute / 40
	if got != want {
		t.Fatalf("calculateTimeout() = %v, want %v", got, want)
	}
}

func TestCalculateTimeoutLevelUsesExplicitMoveCountToGo(t *testing.T) {
	e := &Engine{
		timeControl:   Level(0, 0),
		remainingTime: 10 * time.Second,
		moveCountToGo: 5,
		moveChain:     chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	want := 10 * time.Second / 5
	if got != want {
		t.Fatalf("calculateTimeout() = %v, want %v", got, want)
	}
}

func TestCalculateTimeoutClampsToSafetyMargin(t *testing.T) {
	e := &Engine{
		timeControl:   Level(0, 0),
		remainingTime: 400 * time.Millisecond,
		moveCountToGo: 1,
		moveChain:     chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	if got != 0 {
		t.Fatalf("calculateTimeout() = %v, want 0 when remaining time is below the safety margin", got)
	}
}

func TestCalculateTimeoutClampsWhenQuotientExceedsRemaining(t *testing.T) {
	e := &Engine{
		timeControl:   Level(0, 0),
		remainingTime: 2 * time.Second,
		moveCountToGo: 1,
		moveChain:     chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	want := 2*time.Second - safetyMargin
	if got != want {
		t.Fatalf("calculateTimeout() = %v, want %v", got, want)
	}
}

func TestCalculateTimeoutFixed(t *testing.T) {
	e := &Engine{
		timeControl: Fixed(3 * time.Second),
		moveChain:   chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	want := 3*time.Second - safetyMargin
	if got != want {
		t.Fatalf("calculateTimeout() = %v, want %v", got, want)
	}
}

func TestCalculateTimeoutFixedBelowMargin(t *testing.T) {
	e := &Engine{
		timeControl: Fixed(100 * time.Millisecond),
		moveChain:   chessx.NewInitialChain(),
	}
	got := e.calculateTimeout()
	if got != 0 {
		t.Fatalf("calculateTimeout() = %v, want 0", got)
	}
}

func newTestThinker() *Thinker {
	th := &Thinker{isStopped: true}
	th.cond = sync.NewCond(&th.mu)
	return th
}

func TestThinkerStartWaitStop(t *testing.T) {
	th := newTestThinker()
	if !th.IsStopped() {
		t.Fatal("a freshly built Thinker should start idle")
	}
	th.Start()
	if th.IsStopped() {
		t.Fatal("Start should clear isStopped")
	}
	done := make(chan struct{})
	go func() {
		th.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("Wait returned before stop() was called")
	case <-time.After(20 * time.Millisecond):
	}
	th.stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after stop()")
	}
}
