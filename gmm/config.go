// SPDX-License-Identifier: MIT

package gmm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidArgument reports degenerate data or an unusable Config.
var ErrInvalidArgument = errors.New("gmm: invalid argument")

// ErrUnknownCovarianceType indicates a covariance type name that cannot be parsed.
var ErrUnknownCovarianceType = errors.New("gmm: unknown covariance type")

// CovarianceType selects the per-component covariance family.
type CovarianceType int

const (
	// Full is a dense d×d symmetric positive-definite covariance.
	Full CovarianceType = iota
	// Diagonal keeps only per-dimension variances.
	Diagonal
)

// String implements fmt.Stringer.
func (c CovarianceType) String() string {
	switch c {
	case Full:
		return "FULL"
	case Diagonal:
		return "DIAGONAL"
	default:
		return fmt.Sprintf("CovarianceType(%d)", int(c))
	}
}

// ParseCovarianceType maps "full"/"diagonal" (any case, "diag" accepted) to a CovarianceType.
func ParseCovarianceType(s string) (CovarianceType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FULL":
		return Full, nil
	case "DIAGONAL", "DIAG":
		return Diagonal, nil
	default:
		return Diagonal, fmt.Errorf("%w: %q", ErrUnknownCovarianceType, s)
	}
}

// Defaults for Config.
const (
	DefaultMaxIters       = 200
	DefaultTol            = 1e-5
	DefaultSeed           = 13
	DefaultRidge          = 1e-6
	DefaultKMeansRestarts = 5
	DefaultKMeansMaxIter  = 50
)

// Config controls a single EM fit.
type Config struct {
	K        int
	CovType  CovarianceType
	MaxIters int
	// Tol is the relative log-likelihood change that stops iteration.
	Tol  float64
	Seed int64
	// Ridge is added to every covariance diagonal after each moment update.
	Ridge float64

	KMeansRestarts int
	KMeansMaxIter  int

	// CovShrinkage ∈ [0,1] blends each covariance toward its mean variance
	// (Diagonal) or toward mean-variance·I (Full).
	CovShrinkage float64
	// CovRidgeRel adds CovRidgeRel·(mean variance) to the diagonal on top of Ridge.
	CovRidgeRel float64
	// AnnealSteps > 0 tempers the E-step: β climbs linearly from AnnealStartT to 1.
	AnnealSteps  int
	AnnealStartT float64

	// Logger, when set, receives one debug event per iteration.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default settings for k components.
func DefaultConfig(k int) Config {
	return Config{
		K:              k,
		CovType:        Diagonal,
		MaxIters:       DefaultMaxIters,
		Tol:            DefaultTol,
		Seed:           DefaultSeed,
		Ridge:          DefaultRidge,
		KMeansRestarts: DefaultKMeansRestarts,
		KMeansMaxIter:  DefaultKMeansMaxIter,
		AnnealStartT:   1,
	}
}

// Validate reports the first unusable field. It does not look at data.
func (c Config) Validate() error {
	switch {
	case c.K <= 0:
		return fmt.Errorf("%w: K=%d", ErrInvalidArgument, c.K)
	case c.CovType != Full && c.CovType != Diagonal:
		return fmt.Errorf("%w: %v", ErrUnknownCovarianceType, c.CovType)
	case c.MaxIters <= 0:
		return fmt.Errorf("%w: MaxIters=%d", ErrInvalidArgument, c.MaxIters)
	case c.Tol < 0:
		return fmt.Errorf("%w: Tol=%g", ErrInvalidArgument, c.Tol)
	case c.Ridge < 0:
		return fmt.Errorf("%w: Ridge=%g", ErrInvalidArgument, c.Ridge)
	case c.KMeansRestarts < 1:
		return fmt.Errorf("%w: KMeansRestarts=%d", ErrInvalidArgument, c.KMeansRestarts)
	case c.KMeansMaxIter <= 0:
		return fmt.Errorf("%w: KMeansMaxIter=%d", ErrInvalidArgument, c.KMeansMaxIter)
	case c.CovShrinkage < 0 || c.CovShrinkage > 1:
		return fmt.Errorf("%w: CovShrinkage=%g", ErrInvalidArgument, c.CovShrinkage)
	case c.CovRidgeRel < 0:
		return fmt.Errorf("%w: CovRidgeRel=%g", ErrInvalidArgument, c.CovRidgeRel)
	case c.AnnealSteps < 0:
		return fmt.Errorf("%w: AnnealSteps=%d", ErrInvalidArgument, c.AnnealSteps)
	case c.AnnealSteps > 0 && !(c.AnnealStartT > 0 && c.AnnealStartT <= 1):
		return fmt.Errorf("%w: AnnealStartT=%g", ErrInvalidArgument, c.AnnealStartT)
	}

	return nil
}

// beta returns the tempering exponent for iteration it (0-based).
func (c Config) beta(it int) float64 {
	if c.AnnealSteps <= 0 {
		return 1
	}
	t := float64(it+1) / float64(c.AnnealSteps)
	if t > 1 {
		t = 1
	}
	b := c.AnnealStartT + t*(1-c.AnnealStartT)
	if b < 1e-6 {
		b = 1e-6
	}
	if b > 1 {
		b = 1
	}

	return b
}
