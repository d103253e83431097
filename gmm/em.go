// SPDX-License-Identifier: MIT

// Package gmm fits Gaussian mixtures by Expectation-Maximization.
//
// State machine: Init → (E-step → M-step)* → Converged | MaxIters → Final E-step.
//
// Implementation:
//   - Init: kmeans.ClusterWithRestarts labels give hard weights (empty
//     clusters get weightFloor, then renormalize), means and covariances
//     plus Ridge.
//   - E-step: log wₖ + log N(xᵢ|μₖ,Σₖ) per row and component (Diagonal:
//     Σ z²/v + log v; Full: Cholesky quadratic form and 2·Σ log Lⱼⱼ),
//     optionally tempered by β, normalized by log-sum-exp.
//   - M-step: weights = mean responsibility (floored, renormalized), means,
//     responsibility-weighted second moments, shrinkage, Ridge +
//     CovRidgeRel·mean variance.
//   - Stop when |ℓₜ − ℓₜ₋₁| < Tol·(1+|ℓₜ₋₁|) or after MaxIters.
//   - Final: one untempered E-step gives LogLikelihood and Responsibilities.
//
// Determinism:
//   - Given X and Config (Seed included), Fit is fully deterministic.
package gmm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unmix/kmeans"
	"github.com/katalvlaran/unmix/matrix"
)

// Fit runs EM on the rows of X.
//
// Errors: ErrInvalidArgument for n==0, d==0, K > n, non-finite X, or an invalid Config.
func Fit(X *matrix.Dense, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Fit: %w", err)
	}
	if X == nil || X.Rows() == 0 || X.Cols() == 0 {
		return nil, fmt.Errorf("Fit: %w: empty data", ErrInvalidArgument)
	}
	n, d := X.Shape()
	if cfg.K > n {
		return nil, fmt.Errorf("Fit: %w: K=%d > n=%d", ErrInvalidArgument, cfg.K, n)
	}
	if err := matrix.ValidateFinite(X); err != nil {
		return nil, fmt.Errorf("Fit: %w: %v", ErrInvalidArgument, err)
	}

	seeded, err := kmeans.ClusterWithRestarts(X, cfg.K, cfg.KMeansMaxIter, cfg.Seed, cfg.KMeansRestarts)
	if err != nil {
		return nil, fmt.Errorf("Fit: init: %w", err)
	}

	K := cfg.K
	w := make([]float64, K)
	mu, _ := matrix.NewDense(K, d)
	cov := allocCov(K, d, cfg.CovType)
	hardMoments(X, seeded.Labels, w, mu, cov, cfg.CovType, cfg.Ridge)

	R, _ := matrix.NewDense(n, K)
	trace := make([]float64, 0, cfg.MaxIters)
	prev := math.Inf(-1)
	converged := false
	iterations := 0

	for it := 0; it < cfg.MaxIters; it++ {
		beta := cfg.beta(it)
		comps, err := buildComponents(w, mu, cov, cfg.CovType, d)
		if err != nil {
			return nil, fmt.Errorf("Fit: iteration %d: %w", it, err)
		}
		ll := eStep(X, comps, R, beta)
		mStep(X, R, w, mu, cov, cfg)
		trace = append(trace, ll)
		iterations = it + 1

		if cfg.Logger != nil {
			cfg.Logger.Debug().
				Str("component", "gmm").
				Int("iter", it).
				Float64("beta", beta).
				Float64("ll", ll).
				Floats64("weights", w).
				Msg("em iteration")
		}

		if math.Abs(ll-prev) < cfg.Tol*(1+math.Abs(prev)) {
			converged = true
			break
		}
		prev = ll
	}

	comps, err := buildComponents(w, mu, cov, cfg.CovType, d)
	if err != nil {
		return nil, fmt.Errorf("Fit: final: %w", err)
	}
	final, _ := matrix.NewDense(n, K)
	ll := eStep(X, comps, final, 1)

	return &Model{
		K:                  K,
		D:                  d,
		CovType:            cfg.CovType,
		Weights:            w,
		Means:              mu,
		Covariances:        cov,
		LogLikelihood:      ll,
		Responsibilities:   final,
		Iterations:         iterations,
		Converged:          converged,
		LogLikelihoodTrace: trace,
		comps:              comps,
	}, nil
}

func allocCov(K, d int, ct CovarianceType) [][]float64 {
	cov := make([][]float64, K)
	size := d
	if ct == Full {
		size = d * d
	}
	for k := range cov {
		cov[k] = make([]float64, size)
	}

	return cov
}

// hardMoments initializes parameters from hard labels.
func hardMoments(X *matrix.Dense, z []int, w []float64, mu *matrix.Dense, cov [][]float64, ct CovarianceType, ridge float64) {
	n, d := X.Shape()
	K := len(w)
	cnt := make([]int, K)
	for _, k := range z {
		cnt[k]++
	}
	for k := 0; k < K; k++ {
		if cnt[k] > 0 {
			w[k] = float64(cnt[k]) / float64(n)
		} else {
			w[k] = weightFloor
		}
	}
	NormalizeInPlace(w)

	var i, j, a, b, k int
	for i = 0; i < n; i++ {
		x, m := X.RawRow(i), mu.RawRow(z[i])
		for j = 0; j < d; j++ {
			m[j] += x[j]
		}
	}
	for k = 0; k < K; k++ {
		denom := float64(max(cnt[k], 1))
		m := mu.RawRow(k)
		for j = 0; j < d; j++ {
			m[j] /= denom
		}
	}

	diff := make([]float64, d)
	for i = 0; i < n; i++ {
		k = z[i]
		x, m, S := X.RawRow(i), mu.RawRow(k), cov[k]
		for j = 0; j < d; j++ {
			diff[j] = x[j] - m[j]
		}
		if ct == Diagonal {
			for j = 0; j < d; j++ {
				S[j] += diff[j] * diff[j]
			}
			continue
		}
		for a = 0; a < d; a++ {
			for b = 0; b < d; b++ {
				S[a*d+b] += diff[a] * diff[b]
			}
		}
	}
	for k = 0; k < K; k++ {
		denom := float64(max(cnt[k], 1))
		S := cov[k]
		for j = range S {
			S[j] /= denom
		}
		if ct == Diagonal {
			for j = 0; j < d; j++ {
				S[j] += ridge
			}
		} else {
			for j = 0; j < d; j++ {
				S[j*d+j] += ridge
			}
		}
	}
}

// eStep writes responsibilities into R and returns Σᵢ logsumexp(β·logpᵢ).
func eStep(X *matrix.Dense, comps []component, R *matrix.Dense, beta float64) float64 {
	n, d := X.Shape()
	K := len(comps)
	logp := make([]float64, K)
	scratch := make([]float64, d)

	var ll float64
	var i, k int
	for i = 0; i < n; i++ {
		componentLogDensities(X.RawRow(i), comps, logp, scratch)
		if beta != 1 {
			for k = 0; k < K; k++ {
				logp[k] *= beta
			}
		}
		lse := LogSumExp(logp)
		r := R.RawRow(i)
		for k = 0; k < K; k++ {
			r[k] = math.Exp(logp[k] - lse)
		}
		ll += lse
	}

	return ll
}

// mStep updates w, mu and cov in place from responsibilities R.
func mStep(X, R *matrix.Dense, w []float64, mu *matrix.Dense, cov [][]float64, cfg Config) {
	n, d := X.Shape()
	K := len(w)
	rk := make([]float64, K)
	for k := 0; k < K; k++ {
		m := mu.RawRow(k)
		for j := range m {
			m[j] = 0
		}
	}

	var i, j, k, a, b int
	for i = 0; i < n; i++ {
		x, r := X.RawRow(i), R.RawRow(i)
		for k = 0; k < K; k++ {
			rik := r[k]
			rk[k] += rik
			m := mu.RawRow(k)
			for j = 0; j < d; j++ {
				m[j] += rik * x[j]
			}
		}
	}
	for k = 0; k < K; k++ {
		denom := math.Max(rk[k], weightFloor)
		m := mu.RawRow(k)
		for j = 0; j < d; j++ {
			m[j] /= denom
		}
		w[k] = math.Max(denom/float64(max(n, 1)), weightFloor)
	}
	NormalizeInPlace(w)

	for k = 0; k < K; k++ {
		S := cov[k]
		for j = range S {
			S[j] = 0
		}
	}
	diff := make([]float64, d)
	for i = 0; i < n; i++ {
		x, r := X.RawRow(i), R.RawRow(i)
		for k = 0; k < K; k++ {
			rik := r[k]
			if rik == 0 {
				continue
			}
			m, S := mu.RawRow(k), cov[k]
			for j = 0; j < d; j++ {
				diff[j] = x[j] - m[j]
			}
			if cfg.CovType == Diagonal {
				for j = 0; j < d; j++ {
					S[j] += rik * diff[j] * diff[j]
				}
				continue
			}
			for a = 0; a < d; a++ {
				za := rik * diff[a]
				for b = 0; b < d; b++ {
					S[a*d+b] += za * diff[b]
				}
			}
		}
	}

	lam := math.Min(math.Max(cfg.CovShrinkage, 0), 1)
	rel := math.Max(cfg.CovRidgeRel, 0)
	for k = 0; k < K; k++ {
		denom := math.Max(rk[k], weightFloor)
		S := cov[k]
		for j = range S {
			S[j] /= denom
		}

		var tau float64
		if cfg.CovType == Diagonal {
			for j = 0; j < d; j++ {
				tau += S[j]
			}
		} else {
			for j = 0; j < d; j++ {
				tau += S[j*d+j]
			}
		}
		tau /= float64(max(d, 1))

		if lam > 0 {
			for j = range S {
				S[j] *= 1 - lam
			}
			for j = 0; j < d; j++ {
				if cfg.CovType == Diagonal {
					S[j] += lam * tau
				} else {
					S[j*d+j] += lam * tau
				}
			}
		}

		bump := cfg.Ridge + rel*tau
		for j = 0; j < d; j++ {
			if cfg.CovType == Diagonal {
				S[j] += bump
			} else {
				S[j*d+j] += bump
			}
		}
	}
}
