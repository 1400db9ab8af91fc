// Command nmfinfo factorizes a synthetic low-rank matrix with each NMF
// cost function and prints convergence statistics.
//
// Usage:
//
//	nmfinfo [flags]
//
// Examples:
//
//	nmfinfo
//	nmfinfo -rows 32 -cols 64 -rank 4
//	nmfinfo -depth 2 -steps 2000 -eps 1e-10
//	nmfinfo -seed 7 -normalize
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-nmf/linalg"
	"github.com/cwbudde/algo-nmf/nmf"
)

var costFunctions = []nmf.CostFunction{
	nmf.EuclideanDistance,
	nmf.KLDivergence,
	nmf.EuclideanDistanceSparse,
	nmf.KLDivergenceSparse,
	nmf.EuclideanDistanceSparseNormalized,
	nmf.KLDivergenceContinuous,
}

func main() {
	var (
		rows      = flag.Int("rows", 16, "rows of the synthetic matrix")
		cols      = flag.Int("cols", 24, "columns of the synthetic matrix")
		rank      = flag.Int("rank", 3, "factorization rank")
		depth     = flag.Int("depth", 1, "convolutive depth")
		steps     = flag.Int("steps", 1000, "maximum iterations")
		eps       = flag.Float64("eps", 1e-9, "convergence tolerance (0 disables)")
		seed      = flag.Uint64("seed", 1, "random seed")
		normalize = flag.Bool("normalize", false, "normalize factors after decomposition")
	)

	flag.Parse()

	rng := rand.New(rand.NewPCG(*seed, *seed))

	// Synthesize an exactly low-rank non-negative target.
	a := linalg.NewGenerated(*rows, *rank, linalg.Uniform(0.1, 1, rng))
	b := linalg.NewGenerated(*rank, *cols, linalg.Uniform(0.1, 1, rng))
	v := linalg.New(*rows, *cols)
	v.Mul(a, b)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Cost function\tSteps\tAbs. error\tRel. error")

	for _, cf := range costFunctions {
		d, err := nmf.NewDeconvolver(v, *rank, *depth,
			linalg.Uniform(0.5, 1, rng), linalg.Uniform(0.5, 1, rng))
		if err != nil {
			fmt.Fprintf(os.Stderr, "nmfinfo: %v\n", err)
			os.Exit(1)
		}

		d.SetNormalizeMatrices(*normalize)

		if err := d.Decompose(cf, *steps, *eps, nil); err != nil {
			fmt.Fprintf(tw, "%s\t-\t%v\t\n", cf, err)
			continue
		}

		d.ComputeError()
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%.6g\n", cf, d.Steps(), d.AbsoluteError(), d.RelativeError())
	}

	tw.Flush()
}
