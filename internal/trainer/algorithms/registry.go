package algorithms

import (
	"fmt"

	"github.com/luckboy/neurina/internal/trainer"
)

// New builds the named algorithm rooted at dir, bound to an
// already-constructed gradient adder. name matches the lowercase
// spelling of each algorithms/*.rs file (gd, momentum, adagrad,
// rmsprop, adadelta, adam, expsgd, polysgd); the CLI config's
// [algorithm] section selects one by this name.
func New(name, dir string, ga trainer.GradientAdd) (Algorithm, error) {
	switch name {
	case "gd":
		return NewGDAlgorithm(dir, ga)
	case "momentum":
		return NewMomentumAlgorithm(dir, ga)
	case "adagrad":
		return NewAdagradAlgorithm(dir, ga)
	case "rmsprop":
		return NewRMSPropAlgorithm(dir, ga)
	case "adadelta":
		return NewAdadeltaAlgorithm(dir, ga)
	case "adam":
		return NewAdamAlgorithm(dir, ga)
	case "expsgd":
		return NewExpSGDAlgorithm(dir, ga)
	case "polysgd":
		return NewPolySGDAlgorithm(dir, ga)
	default:
		return nil, fmt.Errorf("algorithms: unknown algorithm %q", name)
	}
}
