package inattention

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solution is the optimal experiment for a Problem, along with the
// distributions derived from it. It is read-only.
type Solution struct {
	problem    *Problem
	experiment *mat.Dense

	iterations int
	distance   float64
}

func (s *Solution) Problem() *Problem {
	return s.problem
}

// Iterations returns the number of fixed-point iterations run.
func (s *Solution) Iterations() int {
	return s.iterations
}

// Distance returns the step size of the final iteration.
func (s *Solution) Distance() float64 {
	return s.distance
}

// ConditionalProb returns the optimal experiment: the probability of
// each action (column) conditional on each state (row).
func (s *Solution) ConditionalProb() *mat.Dense {
	return mat.DenseCopyOf(s.experiment)
}

// UnconditionalProb returns the marginal probability of each action.
func (s *Solution) UnconditionalProb() *mat.VecDense {
	var p mat.VecDense
	p.MulVec(s.experiment.T(), s.problem.prior)
	return &p
}

// Joint returns the joint probability of each (state, action) pair.
func (s *Solution) Joint() *mat.Dense {
	joint := mat.DenseCopyOf(s.experiment)
	for st := 0; st < s.problem.NumStates(); st++ {
		row := joint.RawRowView(st)
		mu := s.problem.prior.AtVec(st)
		for a := range row {
			row[a] *= mu
		}
	}

	return joint
}

// OptimalPosterior returns the posterior over states (rows) given each
// chosen action (columns). Columns for actions with zero marginal
// probability are NaN and reported in a *ZeroMarginalError; the
// matrix is returned in either case.
func (s *Solution) OptimalPosterior() (*mat.Dense, error) {
	joint := s.Joint()
	p := s.UnconditionalProb()
	var zeroActions []int
	for a := 0; a < p.Len(); a++ {
		marginal := p.AtVec(a)
		if marginal == 0 {
			zeroActions = append(zeroActions, a)
		}

		for st := 0; st < s.problem.NumStates(); st++ {
			if marginal == 0 {
				joint.Set(st, a, math.NaN())
			} else {
				joint.Set(st, a, joint.At(st, a)/marginal)
			}
		}
	}

	if len(zeroActions) > 0 {
		return joint, &ZeroMarginalError{Actions: zeroActions}
	}

	return joint, nil
}

// MutualInformation returns the mutual information between the state
// and the chosen action, in nats.
func (s *Solution) MutualInformation() float64 {
	return s.problem.MutualInformation(s.experiment)
}

// ExpectedPayoff returns the ex-ante expected payoff of following the
// optimal experiment.
func (s *Solution) ExpectedPayoff() float64 {
	return s.problem.ExpectedPayoff(s.experiment)
}

// Objective returns the expected payoff net of the information cost,
// which the optimal experiment maximizes.
func (s *Solution) Objective() float64 {
	return s.problem.Objective(s.experiment)
}
