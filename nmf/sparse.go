package nmf

import (
	"math"

	"github.com/cwbudde/algo-nmf/linalg"
)

// sparsityTerms fills the per-row gradient parts of the normalized
// sparseness constraint after Eggert and Körner. For row i with
// Euclidean length ℓᵢ and sum σᵢ over N columns:
//
//	cs⁺ᵢ = √N / ℓᵢ
//	cs⁻ᵢ = √N · σᵢ / ℓᵢ³
//
// hRowSums may be nil, in which case the row sums are computed here.
func (d *Deconvolver) sparsityTerms(csPlus, csMinus, hRowSums []float64) {
	sqrtN := math.Sqrt(float64(d.h.Cols()))

	for i := 0; i < d.h.Rows(); i++ {
		rowSumSq := linalg.DotRows(d.h, i, d.h, i)
		rowLength := math.Sqrt(rowSumSq)

		rowSum := 0.0
		if hRowSums != nil {
			rowSum = hRowSums[i]
		} else {
			rowSum = d.h.RowSum(i)
		}

		csPlus[i] = sqrtN / rowLength
		csMinus[i] = sqrtN * rowSum / (rowSumSq * rowLength)
	}
}

// factorizeNMFEDSparse runs the Euclidean update with the normalized
// sparseness constraint on H (depth 1). The W update is the plain
// Euclidean one; only the H update carries the constraint.
func (d *Deconvolver) factorizeNMFEDSparse(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		wNum   = linalg.New(d.v.Rows(), d.h.Rows())
		wDenom = linalg.New(d.v.Rows(), d.h.Rows())
		hhT    = linalg.New(d.h.Rows(), d.h.Rows())
		wTw    = linalg.New(d.h.Rows(), d.h.Rows())
		hNum   = linalg.New(d.h.Rows(), d.h.Cols())
		hDenom = linalg.New(d.h.Rows(), d.h.Cols())

		csPlus  = make([]float64, d.h.Rows())
		csMinus = make([]float64, d.h.Rows())
	)

	d.numSteps = 0
	for d.numSteps < maxSteps && !d.checkConvergence(eps, true) {
		d.edWUpdate(wNum, wDenom, hhT)

		d.edHUpdateMatrices(hNum, hDenom, wTw)

		d.sparsityTerms(csPlus, csMinus, nil)

		for j := 0; j < d.h.Cols(); j++ {
			for i := 0; i < d.h.Rows(); i++ {
				denom := hDenom.At(i, j) + d.s.At(i, j)*csPlus[i]
				if denom <= 0 {
					denom = divisorFloor
				}

				d.h.Set(i, j, d.h.At(i, j)*
					(hNum.At(i, j)+d.s.At(i, j)*d.h.At(i, j)*csMinus[i])/denom)
			}
		}

		d.nextItStep(observer, maxSteps)
	}
}

// factorizeNMFKLSparse runs the KL update with the normalized
// sparseness constraint on H (depth 1).
func (d *Deconvolver) factorizeNMFKLSparse(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		m = d.v.Rows()
		n = d.v.Cols()
		r = d.h.Rows()

		vOverApprox = linalg.New(m, n)
		wNum        = linalg.New(m, r)
		hNum        = linalg.New(r, n)

		csPlus   = make([]float64, r)
		csMinus  = make([]float64, r)
		hRowSums = make([]float64, r)
		wColSums = make([]float64, r)
	)

	w := d.w[0]

	d.numSteps = 0
	for d.numSteps < maxSteps {
		d.computeApprox()

		if d.checkConvergence(eps, false) {
			break
		}

		// Numerator of the W update as a single product.
		d.v.DivElements(d.approx, vOverApprox)
		wNum.MulTransB(vOverApprox, d.h)

		for i := 0; i < r; i++ {
			hRowSums[i] = d.h.RowSum(i)
		}

		if !d.wConstant {
			for j := 0; j < r; j++ {
				if d.wColConstant[j] {
					continue
				}

				hRowSum := hRowSums[j]
				if hRowSum <= 0 {
					hRowSum = divisorFloor
				}

				for i := 0; i < m; i++ {
					w.Set(i, j, w.At(i, j)*wNum.At(i, j)/hRowSum)
				}
			}

			d.computeApprox()
			d.v.DivElements(d.approx, vOverApprox)
		}

		// H update. The W column sums enter the denominator in place of
		// the Euclidean (Wᵀ·W)·H term.
		d.sparsityTerms(csPlus, csMinus, hRowSums)

		for i := 0; i < r; i++ {
			wColSums[i] = w.ColSum(i)
		}

		hNum.MulTransA(w, vOverApprox)

		for j := 0; j < n; j++ {
			for i := 0; i < r; i++ {
				denom := wColSums[i] + d.s.At(i, j)*csPlus[i]
				if denom <= 0 {
					denom = divisorFloor
				}

				d.h.Set(i, j, d.h.At(i, j)*
					(hNum.At(i, j)+d.s.At(i, j)*d.h.At(i, j)*csMinus[i])/denom)
			}
		}

		d.nextItStep(observer, maxSteps)
	}
}
