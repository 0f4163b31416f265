// Solve example rational inattention problems and print the optimal
// information structure for each cost multiplier.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/inattention"
)

type example struct {
	payoff *mat.Dense
	prior  []float64
}

var examples = map[string]example{
	// Match the action to the state.
	"diagonal": {
		payoff: mat.NewDense(2, 2, []float64{
			1, 0,
			0, 1,
		}),
		prior: []float64{0.5, 0.5},
	},
	// A safe action that is best under the prior.
	"dominant": {
		payoff: mat.NewDense(2, 2, []float64{
			2, 0,
			0, 1,
		}),
		prior: []float64{0.5, 0.5},
	},
	"three_state": {
		payoff: mat.NewDense(3, 3, []float64{
			1, 0, 0.2,
			0, 1, 0.3,
			0.1, 0.4, 1,
		}),
		prior: []float64{0.3, 0.3, 0.4},
	},
}

func main() {
	name := flag.String("problem", "diagonal", "Example problem to solve: "+strings.Join(exampleNames(), ", "))
	costs := flag.String("k", "0.1,1,100", "Comma-separated multipliers on the information cost")
	tolerance := flag.Float64("tolerance", inattention.DefaultTolerance, "Convergence tolerance")
	maxIter := flag.Int("max_iter", inattention.DefaultMaxIterations, "Maximum number of iterations")
	seed := flag.Int64("seed", 123, "Random seed")
	flag.Parse()

	ex, ok := examples[*name]
	if !ok {
		glog.Fatalf("Unknown problem %q, expected one of: %v", *name, exampleNames())
	}

	ks, err := parseCosts(*costs)
	if err != nil {
		glog.Fatalf("Invalid -k: %v", err)
	}

	params := inattention.SolverParams{
		Tolerance:     *tolerance,
		MaxIterations: *maxIter,
	}
	solver := inattention.NewSolver(params, rand.New(rand.NewSource(*seed)))
	if failed := solveExample(os.Stdout, solver, *name, ex, ks); failed > 0 {
		glog.Warningf("Failed to solve %d of %d problems", failed, len(ks))
	}
}

// solveExample solves ex for each cost multiplier in ks and prints the
// results to w. It returns the number of problems that failed to solve.
func solveExample(w io.Writer, solver *inattention.Solver, name string, ex example, ks []float64) int {
	failed := 0
	for _, k := range ks {
		problem, err := inattention.NewProblem(ex.payoff, k, ex.prior)
		if err != nil {
			glog.Errorf("Unable to create %v problem with k = %v: %v", name, k, err)
			failed++
			continue
		}

		glog.Infof("Solving %v problem with k = %v", name, k)
		solution, err := solver.Solve(problem)
		if err != nil {
			glog.Errorf("Unable to solve %v problem with k = %v: %v", name, k, err)
			failed++
			continue
		}

		printSolution(w, solution)
	}

	return failed
}

func printSolution(w io.Writer, solution *inattention.Solution) {
	fmt.Fprintf(w, "k = %v (%d iterations)\n", solution.Problem().Cost(), solution.Iterations())
	fmt.Fprintf(w, "Conditional probabilities:\n%.8f\n",
		mat.Formatted(solution.ConditionalProb(), mat.Squeeze()))
	fmt.Fprintf(w, "Unconditional probabilities:\n%.8f\n",
		mat.Formatted(solution.UnconditionalProb().T(), mat.Squeeze()))
	posterior, err := solution.OptimalPosterior()
	if err != nil {
		glog.Warningf("Posterior is undefined for some actions: %v", err)
	}
	fmt.Fprintf(w, "Optimal posteriors:\n%.8f\n", mat.Formatted(posterior, mat.Squeeze()))
	fmt.Fprintf(w, "Expected payoff: %.8f, mutual information: %.8f nats, objective: %.8f\n\n",
		solution.ExpectedPayoff(), solution.MutualInformation(), solution.Objective())
}

func parseCosts(s string) ([]float64, error) {
	var result []float64
	for _, field := range strings.Split(s, ",") {
		k, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}

		result = append(result, k)
	}

	return result, nil
}

func exampleNames() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
