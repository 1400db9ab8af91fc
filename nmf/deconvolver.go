package nmf

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nmf/linalg"
)

// Errors returned by the deconvolution engine.
var (
	ErrInvalidArgument   = errors.New("nmf: invalid argument")
	ErrUnsupported       = errors.New("nmf: unsupported")
	ErrDimensionMismatch = errors.New("nmf: matrix dimensions mismatch")
)

// divisorFloor replaces non-positive elementwise denominators in the
// multiplicative updates. The value is part of the public contract:
// callers rely on it to keep updates finite under exact-zero states.
const divisorFloor = 1e-9

// nonNegEps is the floor applied when clamping the reconstruction to
// non-negative values after an incremental rebuild.
const nonNegEps = 2.2204460492503131e-16

// defaultNotificationDelay is the initial progress stride.
const defaultNotificationDelay = 25

// ProgressObserver receives progress notifications during Decompose.
//
// ProgressChanged is called synchronously from the decomposition loop
// with the fraction of work done, and exactly once with 1.0 on
// successful completion. Implementations must not call back into the
// engine.
type ProgressObserver interface {
	ProgressChanged(fraction float64)
}

// Deconvolver factorizes a non-negative matrix V into T basis matrices
// W⁰ … W^(T−1) and an activation matrix H so that Σₚ Wᵖ·H→p ≈ V.
//
// A Deconvolver is not safe for concurrent use; V, the factors and the
// weight matrices are owned by the engine and must not be mutated by
// the caller while Decompose runs.
type Deconvolver struct {
	v         *linalg.Matrix   // input, read-only
	approx    *linalg.Matrix   // current reconstruction Λ
	oldApprox *linalg.Matrix   // convergence snapshot, lazily allocated
	w         []*linalg.Matrix // basis sequence, len t
	h         *linalg.Matrix   // activations R×N
	s         *linalg.Matrix   // sparsity weights R×N, zero disables
	c         *linalg.Matrix   // continuity weights R×N, zero disables

	wpH *linalg.Matrix // shared scratch for convolutive reconstruction

	wConstant         bool
	wColConstant      []bool
	normalizeMatrices bool

	t                 int
	numSteps          int
	notificationDelay int

	absoluteError float64
	relativeError float64
	vFrob         float64
}

// NewDeconvolver creates an engine for v with the given rank and
// convolutive depth. wGen and hGen supply the initial values of the
// basis matrices and the activation matrix.
//
// The depth must satisfy 1 ≤ depth ≤ cols(v).
func NewDeconvolver(v *linalg.Matrix, rank, depth int, wGen, hGen linalg.GeneratorFunc) (*Deconvolver, error) {
	if rank < 1 {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidArgument, rank)
	}

	if depth < 1 || depth > v.Cols() {
		return nil, fmt.Errorf("%w: depth %d for matrix with %d columns", ErrInvalidArgument, depth, v.Cols())
	}

	d := &Deconvolver{
		v:                 v,
		approx:            linalg.New(v.Rows(), v.Cols()),
		w:                 make([]*linalg.Matrix, depth),
		h:                 linalg.NewGenerated(rank, v.Cols(), hGen),
		s:                 linalg.New(rank, v.Cols()),
		c:                 linalg.New(rank, v.Cols()),
		wColConstant:      make([]bool, rank),
		t:                 depth,
		notificationDelay: defaultNotificationDelay,
		absoluteError:     -1,
		relativeError:     -1,
		vFrob:             v.FrobeniusNorm(),
	}

	for p := range d.w {
		d.w[p] = linalg.New(v.Rows(), rank)
	}

	if depth > 1 {
		d.wpH = linalg.New(v.Rows(), v.Cols())
	}

	d.GenerateW(wGen)

	return d, nil
}

// GenerateW refills every basis matrix from gen.
func (d *Deconvolver) GenerateW(gen linalg.GeneratorFunc) {
	for _, w := range d.w {
		w.Generate(gen)
	}
}

// GenerateH refills the activation matrix from gen.
func (d *Deconvolver) GenerateH(gen linalg.GeneratorFunc) {
	d.h.Generate(gen)
}

// SetW overwrites basis matrix p with a copy of w.
func (d *Deconvolver) SetW(p int, w *linalg.Matrix) error {
	if !linalg.SameDims(w, d.w[p]) {
		return fmt.Errorf("%w: W[%d] is %d×%d, got %d×%d",
			ErrDimensionMismatch, p, d.w[p].Rows(), d.w[p].Cols(), w.Rows(), w.Cols())
	}

	d.w[p].CopyFrom(w)

	return nil
}

// SetH overwrites the activation matrix with a copy of h.
func (d *Deconvolver) SetH(h *linalg.Matrix) error {
	if !linalg.SameDims(h, d.h) {
		return fmt.Errorf("%w: H is %d×%d, got %d×%d",
			ErrDimensionMismatch, d.h.Rows(), d.h.Cols(), h.Rows(), h.Cols())
	}

	d.h.CopyFrom(h)

	return nil
}

// SetSparsity installs the per-element sparsity weight matrix. A zero
// element disables the sparseness constraint at that cell.
func (d *Deconvolver) SetSparsity(s *linalg.Matrix) error {
	if !linalg.SameDims(s, d.s) {
		return fmt.Errorf("%w: sparsity weights must be %d×%d",
			ErrDimensionMismatch, d.s.Rows(), d.s.Cols())
	}

	d.s.CopyFrom(s)

	return nil
}

// SetContinuity installs the per-element continuity weight matrix. A
// zero element disables the continuity constraint at that cell.
func (d *Deconvolver) SetContinuity(c *linalg.Matrix) error {
	if !linalg.SameDims(c, d.c) {
		return fmt.Errorf("%w: continuity weights must be %d×%d",
			ErrDimensionMismatch, d.c.Rows(), d.c.Cols())
	}

	d.c.CopyFrom(c)

	return nil
}

// SetWConstant freezes or thaws all basis matrices. While frozen, no
// update pass writes to any Wᵖ.
func (d *Deconvolver) SetWConstant(constant bool) { d.wConstant = constant }

// SetWColConstant freezes or thaws column j of every basis matrix.
func (d *Deconvolver) SetWColConstant(j int, constant bool) { d.wColConstant[j] = constant }

// SetNormalizeMatrices controls whether Decompose normalizes H and the
// basis matrices after the update loop finishes.
func (d *Deconvolver) SetNormalizeMatrices(normalize bool) { d.normalizeMatrices = normalize }

// SetNotificationDelay sets the progress stride: the observer is called
// every n iterations. Values below 1 are ignored.
func (d *Deconvolver) SetNotificationDelay(n int) {
	if n >= 1 {
		d.notificationDelay = n
	}
}

// W returns basis matrix p.
func (d *Deconvolver) W(p int) *linalg.Matrix { return d.w[p] }

// H returns the activation matrix.
func (d *Deconvolver) H() *linalg.Matrix { return d.h }

// Approx returns the current reconstruction Λ.
func (d *Deconvolver) Approx() *linalg.Matrix { return d.approx }

// Depth returns the convolutive depth T.
func (d *Deconvolver) Depth() int { return d.t }

// Steps returns the number of iterations performed by the last
// Decompose call.
func (d *Deconvolver) Steps() int { return d.numSteps }

// AbsoluteError returns ‖Λ − V‖_F as of the last ComputeError call, or
// −1 if it has not been computed.
func (d *Deconvolver) AbsoluteError() float64 { return d.absoluteError }

// RelativeError returns the absolute error divided by ‖V‖_F, or −1 if
// it has not been computed.
func (d *Deconvolver) RelativeError() float64 { return d.relativeError }

// VFrobeniusNorm returns ‖V‖_F, cached at construction.
func (d *Deconvolver) VFrobeniusNorm() float64 { return d.vFrob }

// Decompose runs the multiplicative update loop for the chosen cost
// function until maxSteps iterations have been performed or the
// relative change of the reconstruction falls below eps (eps ≤ 0
// disables the convergence check). A nil observer is allowed.
//
// The sparse, continuous and normalized variants are only defined for
// depth 1 and return ErrUnsupported otherwise.
func (d *Deconvolver) Decompose(cf CostFunction, maxSteps int, eps float64, observer ProgressObserver) error {
	switch cf {
	case EuclideanDistance:
		if d.t == 1 {
			d.factorizeNMFED(maxSteps, eps, observer)
		} else {
			d.factorizeNMDED(maxSteps, eps, observer)
		}

	case KLDivergence:
		d.factorizeNMDKL(maxSteps, eps, observer)

	case EuclideanDistanceSparse:
		if d.t > 1 {
			return fmt.Errorf("%w: sparse NMD not implemented", ErrUnsupported)
		}

		d.factorizeNMFEDSparse(maxSteps, eps, observer)

	case KLDivergenceSparse:
		if d.t > 1 {
			return fmt.Errorf("%w: sparse NMD not implemented", ErrUnsupported)
		}

		d.factorizeNMFKLSparse(maxSteps, eps, observer)

	case KLDivergenceContinuous:
		if d.t > 1 {
			return fmt.Errorf("%w: continuous NMD not implemented", ErrUnsupported)
		}

		d.factorizeNMFKLTempCont(maxSteps, eps, observer)

	case EuclideanDistanceSparseNormalized:
		if d.t > 1 {
			return fmt.Errorf("%w: sparse NMD not implemented", ErrUnsupported)
		}

		d.factorizeNMFEDSparseNorm(maxSteps, eps, observer)

	default:
		return fmt.Errorf("%w: unknown cost function %d", ErrInvalidArgument, int(cf))
	}

	if d.normalizeMatrices {
		d.normalize()
	}

	// Make sure the observer sees completion even when the loop exits
	// early or the notification stride never fired.
	if observer != nil {
		observer.ProgressChanged(1.0)
	}

	// The convergence snapshot is only meaningful within one run.
	d.oldApprox = nil

	return nil
}

// ComputeError computes the absolute error ‖Λ − V‖_F and the relative
// error ‖Λ − V‖_F / ‖V‖_F for the current reconstruction.
func (d *Deconvolver) ComputeError() {
	var sum float64

	a, v := d.approx.RawData(), d.v.RawData()
	for k := range a {
		diff := a[k] - v[k]
		sum += diff * diff
	}

	d.absoluteError = math.Sqrt(sum)
	d.relativeError = d.absoluteError / d.vFrob
}

// computeApprox rebuilds Λ = Σₚ Wᵖ·H→p from scratch.
func (d *Deconvolver) computeApprox() {
	if d.t == 1 {
		// Single GEMM, no shift handling needed.
		d.approx.Mul(d.w[0], d.h)
		return
	}

	d.approx.Zero()

	for p := 0; p < d.t; p++ {
		d.computeWpH(p, d.wpH)
		d.approx.Add(d.wpH)
	}
}

// computeWpH writes Wᵖ·H→p into dst. The first p columns of dst are
// zero; the product of Wᵖ with the leading N−p columns of H lands at
// column offset p, which is exactly the multiplication with H shifted p
// spots to the right without materializing the shift.
func (d *Deconvolver) computeWpH(p int, dst *linalg.Matrix) {
	for i := 0; i < dst.Rows(); i++ {
		row := dst.RowView(i)
		clear(row[:p])
	}

	dst.MulSub(d.w[p], d.h, linalg.ProductSpec{
		Rows:   d.w[p].Rows(),
		Inner:  d.w[p].Cols(),
		Cols:   d.h.Cols() - p,
		DstCol: p,
	})
}

// checkConvergence reports whether the relative change of the
// reconstruction since the previous check has fallen below eps. The
// first call only takes the snapshot. With computeNow the
// reconstruction is rebuilt before comparing.
func (d *Deconvolver) checkConvergence(eps float64, computeNow bool) bool {
	if eps <= 0 {
		return false
	}

	if computeNow {
		d.computeApprox()
	}

	if d.oldApprox == nil {
		d.oldApprox = d.approx.Clone()
		return false
	}

	var diffSq, oldSq float64

	a, b := d.approx.RawData(), d.oldApprox.RawData()
	for k := range a {
		diff := a[k] - b[k]
		diffSq += diff * diff
		oldSq += b[k] * b[k]
	}

	zeta := math.Sqrt(diffSq) / math.Sqrt(oldSq)
	d.oldApprox.CopyFrom(d.approx)

	return zeta < eps
}

// ensureNonnegativity clamps every non-positive element of m to a tiny
// positive floor.
func ensureNonnegativity(m *linalg.Matrix) {
	data := m.RawData()
	for k, v := range data {
		if v <= 0 {
			data[k] = nonNegEps
		}
	}
}

// normalize scales H to unit Frobenius norm and rescales the basis
// matrices accordingly (after Wang). Wᵖ pairs with H shifted p columns
// right, so its factor is the H norm minus the cumulative squared norm
// of the p rightmost columns that the shift pushes out.
func (d *Deconvolver) normalize() {
	hNorm := d.h.FrobeniusNorm()
	d.h.Scale(1 / hNorm)

	hNormRight := make([]float64, d.t)
	col := d.h.Cols() - 1

	for p := 1; p < d.t; p++ {
		hNormRight[p] = hNormRight[p-1] + linalg.DotCols(d.h, col, d.h, col)
		col--
	}

	for p := 0; p < d.t; p++ {
		d.w[p].Scale(hNorm - hNormRight[p])
	}
}

// nextItStep advances the step counter and notifies the observer at the
// configured stride.
func (d *Deconvolver) nextItStep(observer ProgressObserver, maxSteps int) {
	d.numSteps++

	if observer != nil && d.numSteps%d.notificationDelay == 0 {
		observer.ProgressChanged(float64(d.numSteps) / float64(maxSteps))
	}
}
