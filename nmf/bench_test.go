package nmf

import (
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-nmf/linalg"
)

func benchTarget(rows, cols, rank int) *linalg.Matrix {
	rng := rand.New(rand.NewPCG(1, 1))

	a := linalg.NewGenerated(rows, rank, linalg.Uniform(0.1, 1, rng))
	b := linalg.NewGenerated(rank, cols, linalg.Uniform(0.1, 1, rng))

	v := linalg.New(rows, cols)
	v.Mul(a, b)

	return v
}

func benchmarkDecompose(b *testing.B, cf CostFunction, depth int) {
	v := benchTarget(64, 128, 8)
	rng := rand.New(rand.NewPCG(2, 2))

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		d, err := NewDeconvolver(v, 8, depth,
			linalg.Uniform(0.5, 1, rng), linalg.Uniform(0.5, 1, rng))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if err := d.Decompose(cf, 20, 0, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecomposeED(b *testing.B)     { benchmarkDecompose(b, EuclideanDistance, 1) }
func BenchmarkDecomposeEDConv(b *testing.B) { benchmarkDecompose(b, EuclideanDistance, 4) }
func BenchmarkDecomposeKL(b *testing.B)     { benchmarkDecompose(b, KLDivergence, 1) }
func BenchmarkDecomposeKLConv(b *testing.B) { benchmarkDecompose(b, KLDivergence, 4) }
func BenchmarkDecomposeSparse(b *testing.B) { benchmarkDecompose(b, EuclideanDistanceSparse, 1) }
func BenchmarkDecomposeContinuous(b *testing.B) {
	benchmarkDecompose(b, KLDivergenceContinuous, 1)
}
