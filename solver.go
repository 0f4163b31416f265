package inattention

import (
	"math"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/inattention/internal/simplex"
)

const (
	DefaultTolerance     = 1e-15
	DefaultMaxIterations = 10000000

	logEvery = 100000
)

type SolverParams struct {
	// Stop once the Euclidean distance between successive
	// unconditional probability vectors is at most Tolerance.
	Tolerance float64
	// Give up with a NonConvergenceError after this many iterations.
	MaxIterations int
}

func DefaultSolverParams() SolverParams {
	return SolverParams{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Solver finds the optimal experiment of a Problem with the
// Blahut-Arimoto algorithm. A Solver is not safe for concurrent use
// because it owns its random source.
type Solver struct {
	params SolverParams
	rng    *rand.Rand
}

// NewSolver returns a Solver that draws its starting points from rng.
// Zero-valued params fall back to the defaults, and a nil rng to a
// source seeded with 1.
func NewSolver(params SolverParams, rng *rand.Rand) *Solver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if params.Tolerance <= 0 {
		params.Tolerance = DefaultTolerance
	}
	if params.MaxIterations <= 0 {
		params.MaxIterations = DefaultMaxIterations
	}

	return &Solver{params: params, rng: rng}
}

// Solve runs the iteration from unconditional probabilities drawn
// uniformly at random. The draw is not normalized: the first
// normalization of the experiment absorbs its scale.
func (s *Solver) Solve(problem *Problem) (*Solution, error) {
	initial := simplex.Uniform(s.rng, problem.NumActions())
	return s.SolveFrom(problem, initial)
}

// SolveFrom runs the iteration from the given unconditional action
// probabilities. initial need not sum to 1 but must be non-negative
// with positive mass. Actions with zero initial mass are never chosen.
func (s *Solver) SolveFrom(problem *Problem, initial []float64) (*Solution, error) {
	nStates, nActions := problem.NumStates(), problem.NumActions()
	if len(initial) != nActions {
		return nil, errors.Wrapf(ErrInvalidInitialGuess,
			"got %d entries for %d actions", len(initial), nActions)
	}
	if !simplex.IsNonNegative(initial) || floats.Sum(initial) <= 0 {
		return nil, errors.Wrapf(ErrInvalidInitialGuess,
			"entries must be non-negative with positive sum: %v", initial)
	}

	tilted := problem.tilted()
	p := make([]float64, nActions)
	copy(p, initial)
	pNew := mat.NewVecDense(nActions, nil)
	experiment := mat.NewDense(nStates, nActions, nil)

	dist := math.Inf(1)
	for i := 1; i <= s.params.MaxIterations; i++ {
		if err := fillExperiment(experiment, tilted, p, i); err != nil {
			return nil, err
		}

		pNew.MulVec(experiment.T(), problem.prior)
		dist = floats.Distance(p, pNew.RawVector().Data, 2)
		copy(p, pNew.RawVector().Data)

		if i%logEvery == 0 {
			glog.V(2).Infof("After %d iterations, distance %v, unconditional probabilities: %v",
				i, dist, p)
		}

		if dist <= s.params.Tolerance {
			if err := fillExperiment(experiment, tilted, p, i); err != nil {
				return nil, err
			}

			glog.V(1).Infof("Converged after %d iterations (distance %v)", i, dist)
			return &Solution{
				problem:    problem,
				experiment: experiment,
				iterations: i,
				distance:   dist,
			}, nil
		}
	}

	glog.Warningf("No convergence after %d iterations (distance %v > tolerance %v)",
		s.params.MaxIterations, dist, s.params.Tolerance)
	return nil, &NonConvergenceError{
		Iterations:    s.params.MaxIterations,
		Distance:      dist,
		Unconditional: simplex.Normalize(p),
	}
}

// fillExperiment sets each row of dst to the tilted utilities of that
// state weighted by p, normalized to sum to 1.
func fillExperiment(dst, tilted *mat.Dense, p []float64, iteration int) error {
	nStates, _ := dst.Dims()
	for s := 0; s < nStates; s++ {
		row := dst.RawRowView(s)
		floats.MulTo(row, tilted.RawRowView(s), p)
		total := floats.Sum(row)
		if !(total > 0) || math.IsInf(total, 0) {
			return &NumericalInstabilityError{
				Iteration: iteration,
				State:     s,
				RowSum:    total,
			}
		}

		floats.Scale(1/total, row)
	}

	return nil
}
