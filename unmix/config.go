// SPDX-License-Identifier: MIT

package unmix

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unmix/gmm"
	"github.com/katalvlaran/unmix/superset"
)

var (
	// ErrInvalidConfig reports a configuration that cannot run.
	ErrInvalidConfig = errors.New("unmix: invalid config")

	// ErrEmptyDataset indicates a nil dataset or one without rows or columns.
	ErrEmptyDataset = errors.New("unmix: empty dataset")

	// ErrNilRegressor indicates a nil residual regressor.
	ErrNilRegressor = errors.New("unmix: nil regressor")
)

// Config holds every public knob of an unmixing run.
type Config struct {
	// K is the component count for Run. SelectK ignores it and sets K per
	// candidate, so it may be left 0 there.
	K int
	// KMin and KMax are the default sweep bounds of the select-k command;
	// SelectK itself takes its bounds as arguments. 1 <= KMin <= KMax.
	KMin, KMax int

	// UseParentSuperset selects screened parent supersets (true) or the
	// pooled search supplied through WithPooledSearch (false).
	UseParentSuperset bool
	Superset          superset.Config

	RobustScaleResiduals bool

	CovarianceType gmm.CovarianceType
	EMMaxIters     int
	EMTol          float64
	Ridge          float64
	KMeansRestarts int
	KMeansMaxIter  int
	Seed           int64

	CovShrinkage float64
	CovRidgeRel  float64
	AnnealSteps  int
	AnnealStartT float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		K:                    2,
		KMin:                 1,
		KMax:                 4,
		UseParentSuperset:    true,
		Superset:             superset.DefaultConfig(),
		RobustScaleResiduals: true,
		CovarianceType:       gmm.Diagonal,
		EMMaxIters:           gmm.DefaultMaxIters,
		EMTol:                gmm.DefaultTol,
		Ridge:                gmm.DefaultRidge,
		KMeansRestarts:       gmm.DefaultKMeansRestarts,
		KMeansMaxIter:        gmm.DefaultKMeansMaxIter,
		Seed:                 gmm.DefaultSeed,
		AnnealStartT:         1,
	}
}

// Validate checks the fields Run depends on (K and the EM / screening knobs).
// SelectK validates a copy with K set to its lower bound.
func (c Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w: K=%d", ErrInvalidConfig, c.K)
	}
	if c.KMin < 1 || c.KMin > c.KMax {
		return fmt.Errorf("%w: need 1 <= KMin(%d) <= KMax(%d)", ErrInvalidConfig, c.KMin, c.KMax)
	}
	if err := c.gmmConfig(c.K).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.UseParentSuperset {
		if err := c.Superset.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// withK returns a copy with K replaced. Config holds only values, so the copy
// shares nothing with c.
func (c Config) withK(k int) Config {
	c.K = k

	return c
}

// gmmConfig translates the EM fields to gmm.Config.
func (c Config) gmmConfig(k int) gmm.Config {
	return gmm.Config{
		K:              k,
		CovType:        c.CovarianceType,
		MaxIters:       c.EMMaxIters,
		Tol:            c.EMTol,
		Seed:           c.Seed,
		Ridge:          c.Ridge,
		KMeansRestarts: c.KMeansRestarts,
		KMeansMaxIter:  c.KMeansMaxIter,
		CovShrinkage:   c.CovShrinkage,
		CovRidgeRel:    c.CovRidgeRel,
		AnnealSteps:    c.AnnealSteps,
		AnnealStartT:   c.AnnealStartT,
	}
}
