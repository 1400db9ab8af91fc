// Package nmf implements non-negative matrix factorization and its
// convolutive extension, non-negative matrix deconvolution.
//
// Given a non-negative M×N matrix V, a rank R and a depth T, the engine
// finds non-negative basis matrices W⁰ … W^(T−1) (each M×R) and a
// non-negative activation matrix H (R×N) so that
//
//	Λ = Σₚ Wᵖ · H→p
//
// approximates V, where H→p is H shifted p columns to the right with
// zero fill on the left. For T = 1 this reduces to plain NMF, V ≈ W·H.
//
// All updates are multiplicative fixed-point rules, so factors stay
// non-negative throughout. Six cost/regularization variants are
// available: squared Euclidean distance, extended Kullback–Leibler
// divergence, both with an optional sparseness constraint, KL with a
// temporal-continuity constraint, and Euclidean distance with
// unit-norm basis columns plus an L1 sparsity term.
//
// # Usage
//
// Factorize a matrix with rank 2 and depth 1:
//
//	rng := rand.New(rand.NewPCG(1, 1))
//	d, _ := nmf.NewDeconvolver(v, 2, 1,
//	    linalg.Uniform(0.5, 1, rng), linalg.Uniform(0.5, 1, rng))
//	if err := d.Decompose(nmf.EuclideanDistance, 1000, 1e-9, nil); err != nil {
//	    // handle err
//	}
//	d.ComputeError()
//	w, h := d.W(0), d.H()
//
// Iteration stops after the given maximum number of steps or as soon as
// the relative change of the reconstruction ‖Λ − Λ'‖_F / ‖Λ'‖_F falls
// below the tolerance. A ProgressObserver, if supplied, is notified at a
// configurable stride and exactly once with 1.0 on completion.
package nmf
