// Package trainer implements the minibatch training pipeline: the
// gradient accumulator (C10), the first-order update algorithms (C11, in
// the algorithms subpackage), and the epoch driver (C12), grounded on
// original_source/src/trainer/*.rs.
package trainer

import "errors"

// ErrNoGradient is returned by Divide, GradientIn, and
// NetworkAndGradientIn when no minibatch has been accumulated yet,
// matching original_source/src/trainer/{gradient_adder.rs,
// one_gradient_adder.rs}'s TrainerError::NoGradient.
var ErrNoGradient = errors.New("trainer: no gradient has been accumulated")

// InterruptedError wraps the intr package's stop/timeout error so
// callers can distinguish "the search was cut short" from every other
// failure mode, matching TrainerError::Interruption.
type InterruptedError struct{ Err error }

func (e *InterruptedError) Error() string { return "trainer: interrupted: " + e.Err.Error() }
func (e *InterruptedError) Unwrap() error { return e.Err }
