package inattention

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/inattention/internal/simplex"
)

func newTestSolver(seed int64) *Solver {
	return NewSolver(DefaultSolverParams(), rand.New(rand.NewSource(seed)))
}

func mustNewProblem(t testing.TB, payoff []float64, nActions int, cost float64, prior []float64) *Problem {
	problem, err := NewProblem(mat.NewDense(len(prior), nActions, payoff), cost, prior)
	if err != nil {
		t.Fatal(err)
	}

	return problem
}

func diagonalProblem(t testing.TB, cost float64) *Problem {
	return mustNewProblem(t, []float64{1, 0, 0, 1}, 2, cost, []float64{0.5, 0.5})
}

func threeStateProblem(t testing.TB, cost float64) *Problem {
	return mustNewProblem(t, []float64{
		1, 0, 0.2,
		0, 1, 0.3,
		0.1, 0.4, 1,
	}, 3, cost, []float64{0.3, 0.3, 0.4})
}

func mustSolve(t testing.TB, s *Solver, problem *Problem) *Solution {
	solution, err := s.Solve(problem)
	if err != nil {
		t.Fatal(err)
	}

	return solution
}

func checkRowStochastic(t *testing.T, m mat.Matrix) {
	t.Helper()
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		if row := mat.Row(nil, i, m); !simplex.IsStochastic(row, 1e-9) {
			t.Errorf("row %d is not a probability distribution: %v", i, row)
		}
	}
}

func TestSolve_CheapAttention(t *testing.T) {
	solution := mustSolve(t, newTestSolver(123), diagonalProblem(t, 0.1))
	e := solution.ConditionalProb()
	t.Logf("Conditional probabilities: %v", mat.Formatted(e))
	checkRowStochastic(t, e)
	if e.At(0, 0) < 0.9999 || e.At(1, 1) < 0.9999 {
		t.Errorf("expected nearly the identity, got %v", mat.Formatted(e))
	}
}

func TestSolve_ExpensiveAttention(t *testing.T) {
	if testing.Short() {
		t.Skip("slow to converge in short mode")
	}

	solution := mustSolve(t, newTestSolver(123), diagonalProblem(t, 100))
	e := solution.ConditionalProb()
	t.Logf("Converged after %d iterations: %v", solution.Iterations(), mat.Formatted(e))
	checkRowStochastic(t, e)
	for s := 0; s < 2; s++ {
		for a := 0; a < 2; a++ {
			if math.Abs(e.At(s, a)-0.5) > 0.01 {
				t.Errorf("expected nearly uniform rows, got %v", mat.Formatted(e))
			}
		}
	}
}

func TestSolve_FullAttentionLimit(t *testing.T) {
	problem := threeStateProblem(t, 0.05)
	solution := mustSolve(t, newTestSolver(123), problem)
	e := solution.ConditionalProb()
	checkRowStochastic(t, e)
	for s, a := range problem.BestResponses() {
		if e.At(s, a) < 0.99 {
			t.Errorf("state %d chooses best response %d with probability %v",
				s, a, e.At(s, a))
		}
	}
}

func TestSolve_NoAttentionLimit(t *testing.T) {
	// Action 0 pays 1 in expectation, action 1 only 0.5.
	problem := mustNewProblem(t, []float64{2, 0, 0, 1}, 2, 10, []float64{0.5, 0.5})
	solution := mustSolve(t, newTestSolver(123), problem)
	e := solution.ConditionalProb()
	checkRowStochastic(t, e)
	for s := 0; s < 2; s++ {
		if math.Abs(e.At(s, 0)-1) > 1e-6 {
			t.Errorf("state %d chooses action 0 with probability %v, expected 1", s, e.At(s, 0))
		}
	}

	if mi := solution.MutualInformation(); mi > 1e-9 {
		t.Errorf("mutual information %v, expected 0", mi)
	}
}

func TestSolve_MarginalConsistency(t *testing.T) {
	for _, cost := range []float64{0.05, 0.2, 0.5, 2} {
		problem := threeStateProblem(t, cost)
		solution := mustSolve(t, newTestSolver(7), problem)
		e := solution.ConditionalProb()
		checkRowStochastic(t, e)

		var expected mat.VecDense
		expected.MulVec(e.T(), mat.NewVecDense(3, problem.Prior()))
		if !mat.EqualApprox(solution.UnconditionalProb(), &expected, 1e-12) {
			t.Errorf("k=%v: unconditional %v != prior * conditional %v",
				cost, mat.Formatted(solution.UnconditionalProb().T()), mat.Formatted(expected.T()))
		}

		if total := mat.Sum(solution.UnconditionalProb()); math.Abs(total-1) > 1e-9 {
			t.Errorf("k=%v: unconditional probabilities sum to %v", cost, total)
		}
	}
}

func TestSolve_IndependentOfSeed(t *testing.T) {
	for _, cost := range []float64{0.2, 0.5} {
		problem := threeStateProblem(t, cost)
		e1 := mustSolve(t, newTestSolver(1), problem).ConditionalProb()
		e2 := mustSolve(t, newTestSolver(2), problem).ConditionalProb()
		if !mat.EqualApprox(e1, e2, 1e-6) {
			t.Errorf("k=%v: solutions differ between seeds:\n%v\n%v",
				cost, mat.Formatted(e1), mat.Formatted(e2))
		}
	}
}

func TestSolveFrom_InitialScaleIrrelevant(t *testing.T) {
	problem := threeStateProblem(t, 0.5)
	s := newTestSolver(0)
	initial := []float64{0.2, 0.7, 0.4}
	scaled := []float64{200, 700, 400}
	e1, err := s.SolveFrom(problem, initial)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := s.SolveFrom(problem, scaled)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.EqualApprox(e1.ConditionalProb(), e2.ConditionalProb(), 1e-9) {
		t.Errorf("rescaling the initial guess changed the solution:\n%v\n%v",
			mat.Formatted(e1.ConditionalProb()), mat.Formatted(e2.ConditionalProb()))
	}

	if initial[0] != 0.2 || scaled[0] != 200 {
		t.Error("initial guess was modified")
	}
}

func TestSolveFrom_InvalidInitialGuess(t *testing.T) {
	problem := diagonalProblem(t, 1)
	s := newTestSolver(0)
	for _, initial := range [][]float64{
		{0.5},
		{0.5, 0.2, 0.3},
		{0, 0},
		{1, -0.5},
		{math.NaN(), 1},
	} {
		if _, err := s.SolveFrom(problem, initial); errors.Cause(err) != ErrInvalidInitialGuess {
			t.Errorf("initial %v: got error %v, expected %v", initial, err, ErrInvalidInitialGuess)
		}
	}
}

func TestSolve_NonConvergence(t *testing.T) {
	s := NewSolver(SolverParams{MaxIterations: 1}, rand.New(rand.NewSource(123)))
	solution, err := s.Solve(threeStateProblem(t, 0.5))
	if solution != nil {
		t.Error("expected no solution")
	}

	ncErr, ok := errors.Cause(err).(*NonConvergenceError)
	if !ok {
		t.Fatalf("got error %v, expected *NonConvergenceError", err)
	}

	if ncErr.Iterations != 1 {
		t.Errorf("got %d iterations, expected 1", ncErr.Iterations)
	}
	if ncErr.Distance <= DefaultTolerance {
		t.Errorf("distance %v should exceed tolerance", ncErr.Distance)
	}
	if len(ncErr.Unconditional) != 3 || !simplex.IsStochastic(ncErr.Unconditional, 1e-12) {
		t.Errorf("unexpected best-effort unconditional probabilities: %v", ncErr.Unconditional)
	}

	// Restarting from the best-effort iterate converges.
	solution, err = newTestSolver(0).SolveFrom(threeStateProblem(t, 0.5), ncErr.Unconditional)
	if err != nil {
		t.Fatal(err)
	}
	checkRowStochastic(t, solution.ConditionalProb())
}

func TestSolve_NumericalInstability(t *testing.T) {
	testCases := []struct {
		name   string
		payoff []float64
	}{
		{"overflow", []float64{1000, 0, 0, 1000}},
		{"underflow", []float64{-1000, -1000, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			problem := mustNewProblem(t, tc.payoff, 2, 1, []float64{0.5, 0.5})
			_, err := newTestSolver(123).Solve(problem)
			niErr, ok := errors.Cause(err).(*NumericalInstabilityError)
			if !ok {
				t.Fatalf("got error %v, expected *NumericalInstabilityError", err)
			}

			if niErr.State != 0 || niErr.Iteration != 1 {
				t.Errorf("got %+v, expected failure in state 0 on iteration 1", niErr)
			}
		})
	}
}

func TestNewSolver_Defaults(t *testing.T) {
	s := NewSolver(SolverParams{}, rand.New(rand.NewSource(0)))
	if s.params != DefaultSolverParams() {
		t.Errorf("got params %+v, expected defaults %+v", s.params, DefaultSolverParams())
	}
}

func TestNewSolver_NilRand(t *testing.T) {
	s := NewSolver(DefaultSolverParams(), nil)
	solution, err := s.Solve(diagonalProblem(t, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	checkRowStochastic(t, solution.ConditionalProb())

	// A nil source is seeded deterministically.
	p1 := simplex.Uniform(NewSolver(SolverParams{}, nil).rng, 3)
	p2 := simplex.Uniform(NewSolver(SolverParams{}, nil).rng, 3)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("default sources drew %v and %v", p1, p2)
		}
	}
}

func BenchmarkSolve(b *testing.B) {
	problem := threeStateProblem(b, 0.5)
	s := newTestSolver(123)
	for i := 0; i < b.N; i++ {
		if _, err := s.Solve(problem); err != nil {
			b.Fatal(err)
		}
	}
}
