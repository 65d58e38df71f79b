package trainer

import (
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/neural"
)

// GradientAdd accumulates a minibatch gradient against a live network
// and exposes the gated accessors an Algorithm uses to apply an update,
// merging original_source's separate GradientAdd and GradientPair<T>
// traits into one interface: every implementation in this port needs
// both, and a single network type (*neural.Network) ever fills T, so a
// Go generic split buys nothing here.
type GradientAdd interface {
	IntrChecker() intr.Checker

	// SamplesAreFull reports whether a bucket of sampleCount samples has
	// reached the gradient adder's maximum column width and should be
	// flushed via Compute.
	SamplesAreFull(sampleCount int) bool

	// Start clears the accumulated gradient, beginning a fresh epoch/pass.
	Start()

	// Compute runs samples (all sharing the same move-sequence length)
	// through the network, accumulating a gradient when areGradients is
	// set, and returns (passed, total) output counts for accuracy
	// reporting.
	Compute(samples []DataSample, moveCount int, areGradients bool) (passedOutputCount, allOutputCount uint64, err error)

	// Divide scales the accumulated gradient down to a mean: GradientAdder
	// divides by the cumulative sample count, OneGradientAdder by the
	// cumulative output count (one per sample per ply). Fails with
	// ErrNoGradient if nothing was accumulated.
	Divide() error

	NetworkIn(f func(*neural.Network))
	GradientIn(f func(*neural.Gradient)) error
	NetworkAndGradientIn(f func(network *neural.Network, gradient *neural.Gradient)) error
}
