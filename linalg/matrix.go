// Package linalg provides the dense matrix container used by the
// factorization engine: row-major double-precision matrices backed by
// blas64 with the sub-block GEMM, row/column reductions and elementwise
// kernels the multiplicative updates are written against.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by matrix constructors and checked operations.
var (
	ErrShape             = errors.New("linalg: invalid matrix shape")
	ErrDimensionMismatch = errors.New("linalg: matrix dimensions mismatch")
)

// GeneratorFunc produces the initial value for the element at (i, j).
type GeneratorFunc func(i, j int) float64

// Matrix is a dense row-major matrix of float64 values.
//
// The backing storage is always fully packed (stride equals the column
// count), so the raw data slice can be handed to vectorized slice kernels
// directly. Elementwise operations and reductions assume matching
// dimensions and do not re-validate them; shape checks happen at
// construction and in the engine's public entry points.
type Matrix struct {
	mat blas64.General
}

// New returns a zero-valued rows×cols matrix.
func New(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(ErrShape)
	}

	return &Matrix{mat: blas64.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float64, rows*cols),
	}}
}

// NewFromSlice returns a rows×cols matrix initialized from data in
// row-major order. The data is copied.
func NewFromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrShape
	}

	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %d×%d matrix", ErrShape, len(data), rows, cols)
	}

	m := New(rows, cols)
	copy(m.mat.Data, data)

	return m, nil
}

// NewGenerated returns a rows×cols matrix filled by gen.
func NewGenerated(rows, cols int, gen GeneratorFunc) *Matrix {
	m := New(rows, cols)
	m.Generate(gen)

	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.mat.Rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.mat.Cols }

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float64 { return m.mat.Data[i*m.mat.Stride+j] }

// Set assigns the element at (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.mat.Data[i*m.mat.Stride+j] = v }

// RawData returns the backing row-major data slice.
func (m *Matrix) RawData() []float64 { return m.mat.Data }

// RowView returns row i as a slice sharing the matrix storage.
func (m *Matrix) RowView(i int) []float64 {
	return m.mat.Data[i*m.mat.Stride : i*m.mat.Stride+m.mat.Cols]
}

// Generate fills the matrix from gen.
func (m *Matrix) Generate(gen GeneratorFunc) {
	for i := 0; i < m.mat.Rows; i++ {
		row := m.RowView(i)
		for j := range row {
			row[j] = gen(i, j)
		}
	}
}

// Zero sets every element to zero.
func (m *Matrix) Zero() {
	clear(m.mat.Data)
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := New(m.mat.Rows, m.mat.Cols)
	copy(c.mat.Data, m.mat.Data)

	return c
}

// CopyFrom overwrites the matrix with the contents of src (same shape).
func (m *Matrix) CopyFrom(src *Matrix) {
	copy(m.mat.Data, src.mat.Data)
}

// SameDims reports whether a and b have identical dimensions.
func SameDims(a, b *Matrix) bool {
	return a.mat.Rows == b.mat.Rows && a.mat.Cols == b.mat.Cols
}

// Add accumulates other into the receiver elementwise.
func (m *Matrix) Add(other *Matrix) {
	floats.Add(m.mat.Data, other.mat.Data)
}

// Sub subtracts other from the receiver elementwise.
func (m *Matrix) Sub(other *Matrix) {
	floats.Sub(m.mat.Data, other.mat.Data)
}

// Scale multiplies every element by c.
func (m *Matrix) Scale(c float64) {
	floats.Scale(c, m.mat.Data)
}

// DivElements writes the elementwise quotient m / den into dst.
func (m *Matrix) DivElements(den, dst *Matrix) {
	floats.DivTo(dst.mat.Data, m.mat.Data, den.mat.Data)
}

// MulElements multiplies the receiver elementwise by other in place.
// The kernel uses SIMD implementations when available.
func (m *Matrix) MulElements(other *Matrix) {
	vecmath.MulBlockInPlace(m.mat.Data, other.mat.Data)
}

// RowSum returns the sum of row i.
func (m *Matrix) RowSum(i int) float64 {
	return floats.Sum(m.RowView(i))
}

// ColSum returns the sum of column j.
func (m *Matrix) ColSum(j int) float64 {
	var sum float64
	for i := 0; i < m.mat.Rows; i++ {
		sum += m.mat.Data[i*m.mat.Stride+j]
	}

	return sum
}

// DotRows returns the dot product of row i of a with row j of b.
func DotRows(a *Matrix, i int, b *Matrix, j int) float64 {
	return floats.Dot(a.RowView(i), b.RowView(j))
}

// DotCols returns the dot product of column i of a with column j of b.
func DotCols(a *Matrix, i int, b *Matrix, j int) float64 {
	return blas64.Dot(
		blas64.Vector{N: a.mat.Rows, Data: a.mat.Data[i:], Inc: a.mat.Stride},
		blas64.Vector{N: b.mat.Rows, Data: b.mat.Data[j:], Inc: b.mat.Stride},
	)
}

// FrobeniusNorm returns √(Σᵢⱼ m(i,j)²).
func (m *Matrix) FrobeniusNorm() float64 {
	return floats.Norm(m.mat.Data, 2)
}

// ColNorm returns the Euclidean norm of column j.
func (m *Matrix) ColNorm(j int) float64 {
	return math.Sqrt(DotCols(m, j, m, j))
}

// ShiftColumnsRight moves every column one position to the right,
// dropping the last column and zero-filling column 0.
func (m *Matrix) ShiftColumnsRight() {
	for i := 0; i < m.mat.Rows; i++ {
		row := m.RowView(i)
		copy(row[1:], row[:len(row)-1])
		row[0] = 0
	}
}

// ProductSpec describes a sub-block matrix product: a logical
// (Rows × Inner) · (Inner × Cols) GEMM reading op(a) at (ARow, ACol),
// op(b) at (BRow, BCol) and writing the Rows×Cols result at
// (DstRow, DstCol) of the destination. Offsets address the stored
// (untransposed) operands. This is how products against a logically
// shifted factor are expressed without materializing the shift.
type ProductSpec struct {
	TransA, TransB    bool
	Rows, Inner, Cols int
	ARow, ACol        int
	BRow, BCol        int
	DstRow, DstCol    int
}

// view returns an r×c window of m anchored at (i, j), sharing storage.
func (m *Matrix) view(i, j, r, c int) blas64.General {
	return blas64.General{
		Rows:   r,
		Cols:   c,
		Stride: m.mat.Stride,
		Data:   m.mat.Data[i*m.mat.Stride+j:],
	}
}

// MulSub computes the sub-block product described by s into the receiver.
// Elements of the destination outside the addressed block are untouched.
func (dst *Matrix) MulSub(a, b *Matrix, s ProductSpec) {
	ta, av := blas.NoTrans, a.view(s.ARow, s.ACol, s.Rows, s.Inner)
	if s.TransA {
		ta, av = blas.Trans, a.view(s.ARow, s.ACol, s.Inner, s.Rows)
	}

	tb, bv := blas.NoTrans, b.view(s.BRow, s.BCol, s.Inner, s.Cols)
	if s.TransB {
		tb, bv = blas.Trans, b.view(s.BRow, s.BCol, s.Cols, s.Inner)
	}

	blas64.Gemm(ta, tb, 1, av, bv, 0, dst.view(s.DstRow, s.DstCol, s.Rows, s.Cols))
}

// Mul computes the full product a·b into the receiver.
func (dst *Matrix) Mul(a, b *Matrix) {
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, a.mat, b.mat, 0, dst.mat)
}

// MulTransA computes aᵀ·b into the receiver.
func (dst *Matrix) MulTransA(a, b *Matrix) {
	blas64.Gemm(blas.Trans, blas.NoTrans, 1, a.mat, b.mat, 0, dst.mat)
}

// MulTransB computes a·bᵀ into the receiver.
func (dst *Matrix) MulTransB(a, b *Matrix) {
	blas64.Gemm(blas.NoTrans, blas.Trans, 1, a.mat, b.mat, 0, dst.mat)
}
