// SPDX-License-Identifier: MIT

package gmm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unmix/matrix"
)

var log2Pi = math.Log(2 * math.Pi)

// varFloor bounds diagonal variances away from zero inside log-densities.
const varFloor = 1e-12

// weightFloor bounds weights away from zero before taking logs.
const weightFloor = 1e-12

// Model is a fitted Gaussian mixture. It is immutable once returned by Fit.
type Model struct {
	K       int
	D       int
	CovType CovarianceType

	// Weights has length K, entries ≥ 0, summing to 1.
	Weights []float64
	// Means is K×D.
	Means *matrix.Dense
	// Covariances[k] is the row-major D×D matrix (Full) or the length-D
	// diagonal (Diagonal) of component k. Use Covariance(k) for a dense copy.
	Covariances [][]float64

	// LogLikelihood is the untempered log-likelihood of the training rows.
	LogLikelihood float64
	// Responsibilities is n×K; each row sums to 1.
	Responsibilities *matrix.Dense

	Iterations int
	Converged  bool
	// LogLikelihoodTrace holds the E-step objective of every iteration.
	LogLikelihoodTrace []float64

	comps []component
}

// component caches what the E-step needs per mixture component.
type component struct {
	logW   float64
	mean   []float64
	invVar []float64        // Diagonal
	chol   *matrix.Cholesky // Full
	logDet float64
}

// NumParams is (K−1) + K·D + K·c with c = D(D+1)/2 for Full and D for Diagonal.
func (m *Model) NumParams() int {
	c := m.D
	if m.CovType == Full {
		c = m.D * (m.D + 1) / 2
	}

	return (m.K - 1) + m.K*m.D + m.K*c
}

// BIC returns −2·LogLikelihood + NumParams·log(max(1,n)). Lower is better.
func (m *Model) BIC(n int) float64 {
	if n < 1 {
		n = 1
	}

	return -2*m.LogLikelihood + float64(m.NumParams())*math.Log(float64(n))
}

// Covariance returns a dense D×D copy of component k's covariance.
func (m *Model) Covariance(k int) (*matrix.Dense, error) {
	if k < 0 || k >= m.K {
		return nil, fmt.Errorf("Covariance(%d): %w", k, matrix.ErrOutOfRange)
	}
	out, _ := matrix.NewDense(m.D, m.D)
	raw := out.RawData()
	src := m.Covariances[k]
	if m.CovType == Full {
		copy(raw, src)
		return out, nil
	}
	for j := 0; j < m.D; j++ {
		raw[j*m.D+j] = src[j]
	}

	return out, nil
}

// LogDensity returns log Σₖ wₖ·N(x | μₖ, Σₖ).
func (m *Model) LogDensity(x []float64) (float64, error) {
	if len(x) != m.D {
		return 0, fmt.Errorf("LogDensity: %w", matrix.ErrDimensionMismatch)
	}
	logp := make([]float64, m.K)
	componentLogDensities(x, m.comps, logp, make([]float64, m.D))

	return LogSumExp(logp), nil
}

// AverageLogLikelihood returns the mean LogDensity over the rows of X.
func (m *Model) AverageLogLikelihood(X *matrix.Dense) (float64, error) {
	if X == nil || X.Rows() == 0 {
		return 0, fmt.Errorf("AverageLogLikelihood: %w", ErrInvalidArgument)
	}
	if X.Cols() != m.D {
		return 0, fmt.Errorf("AverageLogLikelihood: %w", matrix.ErrDimensionMismatch)
	}
	logp := make([]float64, m.K)
	scratch := make([]float64, m.D)
	var sum float64
	for i := 0; i < X.Rows(); i++ {
		componentLogDensities(X.RawRow(i), m.comps, logp, scratch)
		sum += LogSumExp(logp)
	}

	return sum / float64(X.Rows()), nil
}

// componentLogDensities fills logp[k] = log wₖ + log N(x | μₖ, Σₖ).
func componentLogDensities(x []float64, comps []component, logp, scratch []float64) {
	d := len(x)
	for k := range comps {
		c := &comps[k]
		var quad float64
		if c.chol == nil {
			for j := 0; j < d; j++ {
				z := x[j] - c.mean[j]
				quad += z * z * c.invVar[j]
			}
		} else {
			z := scratch[:d]
			for j := 0; j < d; j++ {
				z[j] = x[j] - c.mean[j]
			}
			quad = c.chol.QuadForm(z, z)
		}
		logp[k] = c.logW - 0.5*(float64(d)*log2Pi+c.logDet+quad)
	}
}

// buildComponents precomputes log-weights, inverse variances or Cholesky factors.
// A Full covariance that fails to factorize is retried with a growing diagonal jitter.
func buildComponents(w []float64, mu *matrix.Dense, cov [][]float64, ct CovarianceType, d int) ([]component, error) {
	comps := make([]component, len(w))
	for k := range comps {
		c := component{
			logW: math.Log(math.Max(w[k], weightFloor)),
			mean: mu.RawRow(k),
		}
		if ct == Diagonal {
			c.invVar = make([]float64, d)
			for j := 0; j < d; j++ {
				v := math.Max(cov[k][j], varFloor)
				c.invVar[j] = 1 / v
				c.logDet += math.Log(v)
			}
		} else {
			ch, err := factorWithJitter(cov[k], d)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", k, err)
			}
			c.chol = ch
			c.logDet = ch.LogDet()
		}
		comps[k] = c
	}

	return comps, nil
}

const maxJitterTries = 12

func factorWithJitter(cov []float64, d int) (*matrix.Cholesky, error) {
	S, err := matrix.NewDenseFrom(d, d, cov)
	if err != nil {
		return nil, err
	}
	ch, err := matrix.NewCholesky(S)
	if err == nil {
		return ch, nil
	}

	var scale float64
	for j := 0; j < d; j++ {
		scale += math.Abs(cov[j*d+j])
	}
	scale = math.Max(1, scale/float64(d))
	jitter := 1e-10 * scale
	for try := 0; try < maxJitterTries; try++ {
		J := S.Clone()
		raw := J.RawData()
		for j := 0; j < d; j++ {
			raw[j*d+j] += jitter
		}
		if ch, err = matrix.NewCholesky(J); err == nil {
			return ch, nil
		}
		jitter *= 10
	}

	return nil, err
}
