// Package algorithms implements the eight first-order update rules spec
// component C11 names (GD, Momentum, Adagrad, RMSProp, Adadelta, Adam,
// ExpSGD, PolySGD), grounded on
// original_source/src/trainer/{algorithm.rs,algorithms.rs,algorithms/*.rs}.
package algorithms

import "github.com/luckboy/neurina/internal/trainer"

// Algorithm wraps a gradient adder and applies its accumulated gradient
// to the live network once per epoch, matching algorithm.rs's Algorithm
// trait. The trait declaration there names the update method do_alg,
// but every concrete algorithm (gd.rs, momentum.rs, adagrad.rs, ...)
// instead implements do_algorithm; this port follows the concrete
// implementations rather than the trait's declared name (see DESIGN.md).
type Algorithm interface {
	GradientAdder() trainer.GradientAdd
	Epoch() uint64
	Save() error
	DoAlgorithm() error
}
