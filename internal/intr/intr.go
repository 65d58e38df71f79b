// Package intr implements the cooperative interruption checker (spec
// component C13) shared by search and training, grounded on
// original_source/src/{shared/intr_check.rs,shared/intr_checker.rs,
// shared/ctrl_c_intr_checker.rs,engine/intr_checker.rs,
// trainer/intr_checker.rs}.
package intr

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// ErrInterrupted is returned by Check when a stop has been requested or a
// timeout has elapsed.
var ErrInterrupted = errors.New("intr: interrupted")

// Checker is the narrow interface consumed throughout search and
// training: Check returns ErrInterrupted (or a wrapped variant) once
// stopped.
type Checker interface {
	Check() error
}

type timeoutState struct {
	mu      sync.Mutex
	start   time.Time
	timeout time.Duration
	set     bool
}

// RealChecker is the engine-side, fully functional implementation: an
// atomic stop flag plus a mutex-guarded (start, timeout) pair plus a
// "first check always passes" flag.
type RealChecker struct {
	stopped     atomic.Bool
	timeout     timeoutState
	hasFirst    atomic.Bool
}

// New returns a Checker with no timeout set and the first-check flag not
// armed: unlike NewFirst, its very first Check already reports a pending
// stop or an elapsed timeout.
func New() *RealChecker { return &RealChecker{} }

// NewFirst returns a Checker whose very first Check call always succeeds,
// regardless of stop/timeout state. Only that one call is exempt; later
// checks report stop and timeout normally, even while the first
// iteration of an iterative-deepening search is still running.
func NewFirst() *RealChecker {
	c := &RealChecker{}
	c.hasFirst.Store(true)
	return c
}

// Stop requests interruption.
func (c *RealChecker) Stop() { c.stopped.Store(true) }

// Reset clears the stop flag and timeout, ready for a new search, and
// re-arms the "first check always passes" flag, so the next Check
// succeeds once whatever the stop/timeout state; the checks after it,
// including those later in the first iteration of a search, are not
// exempt.
func (c *RealChecker) Reset() {
	c.stopped.Store(false)
	c.timeout.mu.Lock()
	c.timeout.set = false
	c.timeout.mu.Unlock()
	c.hasFirst.Store(true)
}

// SetTimeout arms a (start, duration) deadline; Check reports
// interruption once now is past start+duration.
func (c *RealChecker) SetTimeout(start time.Time, d time.Duration) {
	c.timeout.mu.Lock()
	c.timeout.start = start
	c.timeout.timeout = d
	c.timeout.set = true
	c.timeout.mu.Unlock()
}

// ClearTimeout disarms the timeout without affecting the stop flag.
func (c *RealChecker) ClearTimeout() {
	c.timeout.mu.Lock()
	c.timeout.set = false
	c.timeout.mu.Unlock()
}

// IsStopped reports the raw stop flag, independent of timeout.
func (c *RealChecker) IsStopped() bool { return c.stopped.Load() }

// Check returns ErrInterrupted if stopped or timed out. The first call on
// a checker constructed via NewFirst always succeeds once, then behaves
// normally thereafter.
func (c *RealChecker) Check() error {
	if c.hasFirst.CompareAndSwap(true, false) {
		return nil
	}
	if c.stopped.Load() {
		return ErrInterrupted
	}
	c.timeout.mu.Lock()
	set, start, d := c.timeout.set, c.timeout.start, c.timeout.timeout
	c.timeout.mu.Unlock()
	if set && time.Since(start) >= d {
		return ErrInterrupted
	}
	return nil
}

// CtrlC is a Checker that reports interruption once SIGINT has been
// received, wrapping os/signal.Notify. Its monitoring goroutine is
// gated by a done channel merged in through channerics.OrDone (the
// same fan-in helper niceyeti-tabular's view-update pipeline uses),
// so Close releases the goroutine instead of leaving it blocked on
// the signal channel forever.
type CtrlC struct {
	signaled atomic.Bool
	ch       chan os.Signal
	done     chan struct{}
}

// NewCtrlC installs a SIGINT handler and returns a Checker tripped by it.
func NewCtrlC() *CtrlC {
	c := &CtrlC{ch: make(chan os.Signal, 1), done: make(chan struct{})}
	signal.Notify(c.ch, os.Interrupt)
	go func() {
		for range channerics.OrDone(c.done, c.ch) {
			c.signaled.Store(true)
			return
		}
	}()
	return c
}

func (c *CtrlC) Check() error {
	if c.signaled.Load() {
		return ErrInterrupted
	}
	return nil
}

// Close stops the SIGINT handler and releases the monitoring goroutine.
func (c *CtrlC) Close() {
	signal.Stop(c.ch)
	close(c.done)
}

// Empty never reports interruption, matching the Rust "EmptyIntrChecker"
// no-op variant used where no cooperative cancellation is wanted (e.g.
// the selector's tests).
type Empty struct{}

func (Empty) Check() error { return nil }
