package nmf_test

import (
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-nmf/linalg"
	"github.com/cwbudde/algo-nmf/nmf"
)

func ExampleDeconvolver_Decompose() {
	// Build an exactly rank-1 target: V = u·vᵀ.
	u := []float64{1, 2, 3}
	v := []float64{1, 1, 2}

	target := linalg.New(3, 3)
	for i := range u {
		for j := range v {
			target.Set(i, j, u[i]*v[j])
		}
	}

	rng := rand.New(rand.NewPCG(1, 1))
	d, err := nmf.NewDeconvolver(target, 1, 1,
		linalg.Uniform(0.5, 1, rng), linalg.Uniform(0.5, 1, rng))
	if err != nil {
		panic(err)
	}

	if err := d.Decompose(nmf.EuclideanDistance, 500, 1e-9, nil); err != nil {
		panic(err)
	}

	d.ComputeError()

	fmt.Printf("converged within step budget: %t\n", d.Steps() <= 500)
	fmt.Printf("relative error below 1e-6: %t\n", d.RelativeError() < 1e-6)

	// Output:
	// converged within step budget: true
	// relative error below 1e-6: true
}

func ExampleCostFunction_String() {
	fmt.Println(nmf.EuclideanDistance)
	fmt.Println(nmf.KLDivergenceContinuous)

	// Output:
	// Squared Euclidean distance
	// Extended KL divergence + continuity constraint
}
