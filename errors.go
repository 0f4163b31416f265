package inattention

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyProblem        = errors.New("payoff matrix has no states or no actions")
	ErrInvalidPayoff       = errors.New("invalid payoff matrix")
	ErrDegenerateCost      = errors.New("cost multiplier must be finite and positive")
	ErrInvalidPrior        = errors.New("invalid prior over states")
	ErrInvalidInitialGuess = errors.New("invalid initial unconditional probabilities")
)

// DimensionMismatchError is returned when the payoff matrix and the
// prior disagree on the number of states.
type DimensionMismatchError struct {
	PayoffRows int
	PriorLen   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("payoff matrix has %d states but prior has %d entries",
		e.PayoffRows, e.PriorLen)
}

// NumericalInstabilityError is returned when a row of the tilted
// experiment cannot be normalized, typically because exp(U/k)
// overflowed or underflowed for a very small cost multiplier.
type NumericalInstabilityError struct {
	Iteration int
	State     int
	RowSum    float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("cannot normalize experiment row for state %d at iteration %d (row sum %v)",
		e.State, e.Iteration, e.RowSum)
}

// NonConvergenceError is returned when the fixed-point iteration does
// not reach the requested tolerance within the iteration cap.
// Unconditional holds the last iterate, which callers may use to
// restart the solver.
type NonConvergenceError struct {
	Iterations    int
	Distance      float64
	Unconditional []float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("did not converge after %d iterations (distance %v)",
		e.Iterations, e.Distance)
}

// ZeroMarginalError lists actions that are never chosen, for which
// the optimal posterior is undefined.
type ZeroMarginalError struct {
	Actions []int
}

func (e *ZeroMarginalError) Error() string {
	return fmt.Sprintf("actions %v have zero unconditional probability", e.Actions)
}
