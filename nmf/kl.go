package nmf

import "github.com/cwbudde/algo-nmf/linalg"

// factorizeNMDKL runs the extended-KL-divergence update for any depth.
//
// The W pass keeps a locally shifted copy of H so that the row sums of
// H→p can be read directly per p-step. Summing the leading N−p columns
// of H would give the same numbers; the explicit shift keeps the access
// pattern of the following V/Λ·(H→p)ᵀ product sequential.
func (d *Deconvolver) factorizeNMDKL(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		m = d.v.Rows()
		n = d.v.Cols()
		r = d.h.Rows()

		vOverApprox = linalg.New(m, n)
		hShifted    = linalg.New(r, n)
		wNum        = linalg.New(m, r)
		hUpdate     = linalg.New(r, n)
		hNum        = linalg.New(r, n)
		wpColSums   = make([]float64, r)

		wpH *linalg.Matrix
	)

	if d.t > 1 {
		wpH = linalg.New(m, n)
	}

	d.numSteps = 0
	for d.numSteps < maxSteps {
		// Rebuild Λ at the top; depth 1 rebuilds it again after the W
		// pass below.
		d.computeApprox()

		if d.checkConvergence(eps, false) {
			break
		}

		d.v.DivElements(d.approx, vOverApprox)

		if !d.wConstant {
			hShifted.CopyFrom(d.h)

			for p := 0; p < d.t; p++ {
				if d.t > 1 {
					// Difference-based reconstruction: take the old
					// Wᵖ·H→p out of Λ before touching Wᵖ.
					d.computeWpH(p, wpH)
					d.approx.Sub(wpH)
				}

				wNum.MulTransB(vOverApprox, hShifted)

				for j := 0; j < r; j++ {
					if d.wColConstant[j] {
						continue
					}

					hRowSum := hShifted.RowSum(j)
					if hRowSum <= 0 {
						hRowSum = divisorFloor
					}

					for i := 0; i < m; i++ {
						d.w[p].Set(i, j, d.w[p].At(i, j)*wNum.At(i, j)/hRowSum)
					}
				}

				if d.t > 1 {
					d.computeWpH(p, wpH)
					d.approx.Add(wpH)
					ensureNonnegativity(d.approx)

					hShifted.ShiftColumnsRight()
				}
			}
		}

		// For depth 1 a single product is cheaper than maintaining the
		// difference-based reconstruction.
		if d.t == 1 {
			d.computeApprox()
		}

		// Λ is up to date in either case now.
		d.v.DivElements(d.approx, vOverApprox)

		// Accumulate the H update over all Wᵖ, then apply the average.
		hUpdate.Zero()

		for p := 0; p < d.t; p++ {
			for i := 0; i < r; i++ {
				wpColSums[i] = d.w[p].ColSum(i)
				if wpColSums[i] <= 0 {
					wpColSums[i] = divisorFloor
				}
			}

			// Instead of shifting V/Λ p spots to the left, read its
			// columns from p on; the rightmost p columns of the result
			// are ignored below.
			hNum.MulSub(d.w[p], vOverApprox, linalg.ProductSpec{
				TransA: true,
				Rows:   r,
				Inner:  m,
				Cols:   n - p,
				BCol:   p,
			})

			for j := 0; j < n-p; j++ {
				for i := 0; i < r; i++ {
					hUpdate.Set(i, j, hUpdate.At(i, j)+hNum.At(i, j)/wpColSums[i])
				}
			}
		}

		hUpdate.Scale(1 / float64(d.t))
		d.h.MulElements(hUpdate)

		d.nextItStep(observer, maxSteps)
	}
}
