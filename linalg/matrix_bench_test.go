package linalg

import (
	"math/rand/v2"
	"testing"
)

func benchMatrices(m, k, n int) (a, b, dst *Matrix) {
	rng := rand.New(rand.NewPCG(1, 1))
	gen := Uniform(0, 1, rng)

	return NewGenerated(m, k, gen), NewGenerated(k, n, gen), New(m, n)
}

func BenchmarkMul(b *testing.B) {
	x, y, dst := benchMatrices(128, 64, 256)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		dst.Mul(x, y)
	}
}

func BenchmarkMulSubShifted(b *testing.B) {
	x, y, dst := benchMatrices(128, 64, 256)

	spec := ProductSpec{
		Rows:   128,
		Inner:  64,
		Cols:   192,
		DstCol: 64,
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		dst.MulSub(x, y, spec)
	}
}

func BenchmarkFrobeniusNorm(b *testing.B) {
	m := NewGenerated(256, 256, Uniform(0, 1, rand.New(rand.NewPCG(2, 2))))

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = m.FrobeniusNorm()
	}
}
