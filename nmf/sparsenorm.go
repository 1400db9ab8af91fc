package nmf

import "github.com/cwbudde/algo-nmf/linalg"

// factorizeNMFEDSparseNorm runs the Euclidean update with unit-norm
// basis columns and an L1 sparsity term on H (depth 1, after Eggert and
// Körner). Each iteration first renormalizes the non-frozen basis columns, then
// updates H against the normalized basis, then applies the normalized
// multiplicative W update whose correction terms read the diagonals of
// (H·Hᵀ)·(Wᵀ·W) and (H·Vᵀ)·W.
func (d *Deconvolver) factorizeNMFEDSparseNorm(maxSteps int, eps float64, observer ProgressObserver) {
	var (
		m = d.v.Rows()
		n = d.v.Cols()
		r = d.h.Rows()

		wTw    = linalg.New(r, r)
		hNum   = linalg.New(r, n)
		hDenom = linalg.New(r, n)

		wNum1   = linalg.New(m, r)
		hhT     = linalg.New(r, r)
		wDenom1 = linalg.New(m, r)

		hvT     = linalg.New(r, m)
		wNum2   = linalg.New(r, r)
		wDenom2 = linalg.New(r, r)
	)

	w := d.w[0]

	d.numSteps = 0
	for d.numSteps < maxSteps && !d.checkConvergence(eps, true) {
		// Normalize the basis columns to unit Euclidean length.
		for j := 0; j < r; j++ {
			if d.wConstant || d.wColConstant[j] {
				continue
			}

			norm := w.ColNorm(j)
			if norm <= 0 {
				norm = divisorFloor
			}

			for i := 0; i < m; i++ {
				w.Set(i, j, w.At(i, j)/norm)
			}
		}

		// H update. Wᵀ·W is kept for the W update below.
		hNum.MulTransA(w, d.v)
		wTw.MulTransA(w, w)
		hDenom.Mul(wTw, d.h)

		for j := 0; j < n; j++ {
			for i := 0; i < r; i++ {
				denom := hDenom.At(i, j) + d.s.At(i, j)
				if denom <= 0 {
					denom = divisorFloor
				}

				d.h.Set(i, j, d.h.At(i, j)*hNum.At(i, j)/denom)
			}
		}

		// W update with the normalization correction terms.
		wNum1.MulTransB(d.v, d.h)
		hhT.MulTransB(d.h, d.h)
		wDenom1.Mul(w, hhT)
		wNum2.Mul(hhT, wTw)
		hvT.MulTransB(d.h, d.v)
		wDenom2.Mul(hvT, w)

		for j := 0; j < r; j++ {
			if d.wConstant || d.wColConstant[j] {
				continue
			}

			for i := 0; i < m; i++ {
				num := wNum1.At(i, j) + wNum2.At(j, j)*w.At(i, j)

				denom := wDenom1.At(i, j) + wDenom2.At(j, j)*w.At(i, j)
				if denom <= 0 {
					denom = divisorFloor
				}

				w.Set(i, j, w.At(i, j)*num/denom)
			}
		}

		d.nextItStep(observer, maxSteps)
	}
}
