// Package inattention computes the optimal information structure of a
// rational inattention problem with Shannon information costs, using the
// Blahut-Arimoto algorithm.
package inattention

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/inattention/internal/simplex"
)

// Tolerance on the sum of the prior.
const priorSumTolerance = 1e-9

// Problem is a rational inattention choice problem: a payoff for each
// (state, action) pair, a multiplier on the Shannon cost of
// information, and a prior over states.
//
// A Problem is immutable once constructed and may be shared between
// goroutines.
type Problem struct {
	payoff *mat.Dense
	cost   float64
	prior  *mat.VecDense
}

// NewProblem validates and copies the given inputs. payoff must have
// one row per state and one column per action, and len(prior) must
// equal the number of states. Larger cost makes information more
// expensive.
func NewProblem(payoff mat.Matrix, cost float64, prior []float64) (*Problem, error) {
	nStates, nActions := payoff.Dims()
	if nStates != len(prior) {
		return nil, &DimensionMismatchError{PayoffRows: nStates, PriorLen: len(prior)}
	}

	if nStates == 0 || nActions == 0 {
		return nil, ErrEmptyProblem
	}

	u := mat.DenseCopyOf(payoff)
	for s := 0; s < nStates; s++ {
		for a := 0; a < nActions; a++ {
			if x := u.At(s, a); math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, errors.Wrapf(ErrInvalidPayoff,
					"payoff for state %d, action %d is %v", s, a, x)
			}
		}
	}

	if !(cost > 0) || math.IsInf(cost, 0) {
		return nil, errors.Wrapf(ErrDegenerateCost, "got %v", cost)
	}

	if !simplex.IsNonNegative(prior) {
		return nil, errors.Wrapf(ErrInvalidPrior, "entries must be finite and non-negative: %v", prior)
	}
	if total := floats.Sum(prior); math.Abs(total-1) > priorSumTolerance {
		return nil, errors.Wrapf(ErrInvalidPrior, "sums to %v, expected 1", total)
	}

	mu := make([]float64, len(prior))
	copy(mu, prior)
	return &Problem{
		payoff: u,
		cost:   cost,
		prior:  mat.NewVecDense(nStates, mu),
	}, nil
}

func (p *Problem) NumStates() int {
	return p.prior.Len()
}

func (p *Problem) NumActions() int {
	_, c := p.payoff.Dims()
	return c
}

func (p *Problem) Cost() float64 {
	return p.cost
}

// Payoff returns a copy of the payoff matrix.
func (p *Problem) Payoff() *mat.Dense {
	return mat.DenseCopyOf(p.payoff)
}

// Prior returns a copy of the prior over states.
func (p *Problem) Prior() []float64 {
	result := make([]float64, p.prior.Len())
	copy(result, p.prior.RawVector().Data)
	return result
}

// BestResponses returns the payoff-maximizing action in each state,
// i.e. the choice of a decision-maker with free information.
func (p *Problem) BestResponses() []int {
	result := make([]int, p.NumStates())
	for s := range result {
		_, result[s] = simplex.ArgMax(p.payoff.RawRowView(s))
	}

	return result
}

// tilted returns exp(U[s,a] / k) for every entry of the payoff matrix.
func (p *Problem) tilted() *mat.Dense {
	var t mat.Dense
	t.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(v / p.cost)
	}, p.payoff)
	return &t
}

// checkExperimentShape panics with mat.ErrShape unless experiment has
// one row per state and one column per action.
func (p *Problem) checkExperimentShape(experiment mat.Matrix) {
	if r, c := experiment.Dims(); r != p.NumStates() || c != p.NumActions() {
		panic(mat.ErrShape)
	}
}

// ExpectedPayoff returns the ex-ante expected payoff of choosing
// according to experiment, whose rows are distributions over actions.
// experiment must be NumStates x NumActions.
func (p *Problem) ExpectedPayoff(experiment mat.Matrix) float64 {
	p.checkExperimentShape(experiment)
	total := 0.0
	for s := 0; s < p.NumStates(); s++ {
		mu := p.prior.AtVec(s)
		for a := 0; a < p.NumActions(); a++ {
			total += mu * experiment.At(s, a) * p.payoff.At(s, a)
		}
	}

	return total
}

// MutualInformation returns the mutual information, in nats, between
// the state and the action chosen according to experiment, which must
// be NumStates x NumActions.
func (p *Problem) MutualInformation(experiment mat.Matrix) float64 {
	p.checkExperimentShape(experiment)
	var marginal mat.VecDense
	marginal.MulVec(experiment.T(), p.prior)

	total := 0.0
	for s := 0; s < p.NumStates(); s++ {
		mu := p.prior.AtVec(s)
		for a := 0; a < p.NumActions(); a++ {
			e := experiment.At(s, a)
			if e == 0 || mu == 0 {
				continue
			}

			total += mu * e * math.Log(e/marginal.AtVec(a))
		}
	}

	return total
}

// Objective returns the expected payoff of experiment net of its
// Shannon information cost.
func (p *Problem) Objective(experiment mat.Matrix) float64 {
	return p.ExpectedPayoff(experiment) - p.cost*p.MutualInformation(experiment)
}
