package nmf

import "github.com/cwbudde/algo-nmf/linalg"

// factorizeNMFKLTempCont runs the KL update with the temporal-continuity
// constraint on H (depth 1, after Virtanen). The constraint penalizes
// large column-to-column changes; its gradient couples each element to
// its left and right neighbors, so the pre-update H is kept for the
// left-neighbor term while the sweep overwrites columns left to right.
func (d *Deconvolver) factorizeNMFKLTempCont(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		m = d.v.Rows()
		n = d.v.Cols()
		r = d.h.Rows()

		vOverApprox = linalg.New(m, n)
		wNum        = linalg.New(m, r)
		hNum        = linalg.New(r, n)
		oldH        = linalg.New(r, n)

		ctPlus   = make([]float64, r)
		ctMinus1 = make([]float64, r)
		ctMinus2 = make([]float64, r)
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

		oldH.CopyFrom(d.h)

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

		// Per-row parts of the continuity gradient. With sᵢ = Σⱼ H(i,j)²
		// and dᵢ = Σⱼ (H(i,j) − H(i,j−1))²:
		//
		//	ct⁺ᵢ  = 4N / sᵢ
		//	ct⁻¹ᵢ = 2N / sᵢ
		//	ct⁻²ᵢ = 2N·dᵢ / sᵢ²
		for i := 0; i < r; i++ {
			rowSumSq := linalg.DotRows(d.h, i, d.h, i)
			wColSums[i] = w.ColSum(i)

			deltaSumSq := 0.0
			for j := 1; j < n; j++ {
				delta := d.h.At(i, j) - d.h.At(i, j-1)
				deltaSumSq += delta * delta
			}

			ctPlus[i] = 4 * float64(n) / rowSumSq
			ctMinus1[i] = 2 * float64(n) / rowSumSq
			ctMinus2[i] = 2 * float64(n) * deltaSumSq / (rowSumSq * rowSumSq)
		}

		hNum.MulTransA(w, vOverApprox)

		for j := 0; j < n; j++ {
			for i := 0; i < r; i++ {
				denom := wColSums[i] + d.c.At(i, j)*d.h.At(i, j)*ctPlus[i]
				if denom <= 0 {
					denom = divisorFloor
				}

				// Left neighbor from the pre-update H: column j−1 has
				// already been overwritten by this sweep.
				left := 0.0
				if j > 0 {
					left = oldH.At(i, j-1)
				}

				right := 0.0
				if j < n-1 {
					right = d.h.At(i, j+1)
				}

				d.h.Set(i, j, d.h.At(i, j)*
					(hNum.At(i, j)+d.c.At(i, j)*((left+right)*ctMinus1[i]+d.h.At(i, j)*ctMinus2[i]))/denom)
			}
		}

		d.nextItStep(observer, maxSteps)
	}
}
