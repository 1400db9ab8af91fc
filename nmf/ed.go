package nmf

import "github.com/cwbudde/algo-nmf/linalg"

// edWUpdate applies the Lee–Seung Euclidean W update for depth 1:
// W ← W ⊙ (V·Hᵀ) ⊘ (W·(H·Hᵀ)). Computing W·(H·Hᵀ) instead of (W·H)·Hᵀ
// trades an M×N product for an R×R one.
func (d *Deconvolver) edWUpdate(wNum, wDenom, hhT *linalg.Matrix) {
	if d.wConstant {
		return
	}

	w := d.w[0]

	wNum.MulTransB(d.v, d.h)
	hhT.MulTransB(d.h, d.h)
	wDenom.Mul(w, hhT)

	for j := 0; j < w.Cols(); j++ {
		if d.wColConstant[j] {
			continue
		}

		for i := 0; i < w.Rows(); i++ {
			denom := wDenom.At(i, j)
			if denom <= 0 {
				denom = divisorFloor
			}

			w.Set(i, j, w.At(i, j)*wNum.At(i, j)/denom)
		}
	}
}

// edHUpdateMatrices fills the numerator Wᵀ·V and denominator (Wᵀ·W)·H of
// the Euclidean H update. (Wᵀ·W)·H is cheaper than Wᵀ·(W·H) for the
// usual R ≪ M.
func (d *Deconvolver) edHUpdateMatrices(hNum, hDenom, wTw *linalg.Matrix) {
	hNum.MulTransA(d.w[0], d.v)
	wTw.MulTransA(d.w[0], d.w[0])
	hDenom.Mul(wTw, d.h)
}

// factorizeNMFED runs the standard Euclidean-distance NMF update for
// depth 1.
func (d *Deconvolver) factorizeNMFED(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		wNum   = linalg.New(d.v.Rows(), d.h.Rows())
		wDenom = linalg.New(d.v.Rows(), d.h.Rows())
		hhT    = linalg.New(d.h.Rows(), d.h.Rows())
		wTw    = linalg.New(d.h.Rows(), d.h.Rows())
		hNum   = linalg.New(d.h.Rows(), d.h.Cols())
		hDenom = linalg.New(d.h.Rows(), d.h.Cols())
	)

	d.numSteps = 0
	for d.numSteps < maxSteps && !d.checkConvergence(eps, true) {
		d.edWUpdate(wNum, wDenom, hhT)

		d.edHUpdateMatrices(hNum, hDenom, wTw)

		for j := 0; j < d.h.Cols(); j++ {
			for i := 0; i < d.h.Rows(); i++ {
				denom := hDenom.At(i, j)
				if denom <= 0 {
					denom = divisorFloor
				}

				d.h.Set(i, j, d.h.At(i, j)*hNum.At(i, j)/denom)
			}
		}

		d.nextItStep(observer, maxSteps)
	}
}

// factorizeNMDED runs the convolutive Euclidean-distance update. The
// reconstruction is maintained incrementally across the Wᵖ updates:
// the old Wᵖ·H→p is subtracted, Wᵖ is updated, the new product is added
// back and the result clamped non-negative (difference-based update
// after Wang).
func (d *Deconvolver) factorizeNMDED(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		m = d.v.Rows()
		n = d.v.Cols()
		r = d.h.Rows()

		hSum   = linalg.New(r, n)
		wNum   = linalg.New(m, r)
		wDenom = linalg.New(m, r)
		hNum   = linalg.New(r, n)
		hDenom = linalg.New(r, n)
		wpH    = linalg.New(m, n)
	)

	d.numSteps = 0
	for d.numSteps < maxSteps {
		// Rebuild Λ at the top; the H update below relies on it.
		d.computeApprox()

		if d.checkConvergence(eps, false) {
			break
		}

		if !d.wConstant {
			for p := 0; p < d.t; p++ {
				// V·(H→p)ᵀ. Shifting H right introduces leading zero
				// rows in the transposed factor, which is the same as
				// using only the V columns from p on.
				wNum.MulSub(d.v, d.h, linalg.ProductSpec{
					TransB: true,
					Rows:   m,
					Inner:  n - p,
					Cols:   r,
					ACol:   p,
				})

				// Λ·(H→p)ᵀ, same block structure.
				wDenom.MulSub(d.approx, d.h, linalg.ProductSpec{
					TransB: true,
					Rows:   m,
					Inner:  n - p,
					Cols:   r,
					ACol:   p,
				})

				// Λ minus the old Wᵖ·H→p; Λ is not read by the update
				// loop itself, so overwriting it here is safe.
				d.computeWpH(p, wpH)
				d.approx.Sub(wpH)

				for j := 0; j < r; j++ {
					if d.wColConstant[j] {
						continue
					}

					for i := 0; i < m; i++ {
						denom := wDenom.At(i, j)
						if denom <= 0 {
							denom = divisorFloor
						}

						d.w[p].Set(i, j, d.w[p].At(i, j)*wNum.At(i, j)/denom)
					}
				}

				// Λ plus the new Wᵖ·H→p.
				d.computeWpH(p, wpH)
				d.approx.Add(wpH)
				ensureNonnegativity(d.approx)
			}
		}

		// H update: average the updates corresponding to each Wᵖ.
		hSum.Zero()

		for p := 0; p < d.t; p++ {
			// Wᵖᵀ times V (resp. Λ) shifted p spots left, expressed by
			// reading the source columns from p on. The rightmost p
			// columns of the numerator and denominator are not computed;
			// there the old H value enters the average unchanged.
			hNum.MulSub(d.w[p], d.v, linalg.ProductSpec{
				TransA: true,
				Rows:   r,
				Inner:  m,
				Cols:   n - p,
				BCol:   p,
			})
			hDenom.MulSub(d.w[p], d.approx, linalg.ProductSpec{
				TransA: true,
				Rows:   r,
				Inner:  m,
				Cols:   n - p,
				BCol:   p,
			})

			for j := 0; j < n-p; j++ {
				for i := 0; i < r; i++ {
					denom := hDenom.At(i, j)
					if denom <= 0 {
						denom = divisorFloor
					}

					hSum.Set(i, j, hSum.At(i, j)+d.h.At(i, j)*hNum.At(i, j)/denom)
				}
			}

			for j := n - p; j < n; j++ {
				for i := 0; i < r; i++ {
					hSum.Set(i, j, hSum.At(i, j)+d.h.At(i, j))
				}
			}
		}

		d.h.CopyFrom(hSum)
		d.h.Scale(1 / float64(d.t))

		d.nextItStep(observer, maxSteps)
	}
}
