// SPDX-License-Identifier: MIT

// Package simulate draws datasets from a mixture of linear structural
// equation models, one per regime, with ground-truth labels and graphs.
//
// Regime 0 uses a random DAG over X1..Xp (edges only from lower to higher
// index) with coefficients drawn uniformly from ±[CoefMin, CoefMax]. Every
// later regime derives from it by perturbing coefficients, flipping edges
// with probability FlipProb, and shifting intercepts.
//
// Determinism:
//   - Structure, the regimes and the final shuffle each own a stream derived
//     from Seed. Regime r draws from rng.Derive(regimes, r), taken in regime
//     order, so the output depends only on Config.
package simulate

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/internal/rng"
	"github.com/katalvlaran/unmix/matrix"
)

// ErrInvalidConfig reports an unusable simulation config.
var ErrInvalidConfig = errors.New("simulate: invalid config")

// Noise selects the exogenous noise distribution.
type Noise int

const (
	// Gaussian noise with standard deviation NoiseScale.
	Gaussian Noise = iota
	// Laplace noise with scale NoiseScale.
	Laplace
)

func (n Noise) String() string {
	switch n {
	case Gaussian:
		return "gaussian"
	case Laplace:
		return "laplace"
	default:
		return fmt.Sprintf("Noise(%d)", int(n))
	}
}

// ParseNoise accepts "gaussian" and "laplace".
func ParseNoise(s string) (Noise, error) {
	switch s {
	case "gaussian", "normal":
		return Gaussian, nil
	case "laplace":
		return Laplace, nil
	default:
		return 0, fmt.Errorf("%w: unknown noise %q", ErrInvalidConfig, s)
	}
}

// streams
const (
	streamStructure uint64 = iota
	streamShuffle
	streamRegimes
)

// Config describes a simulated mixture.
type Config struct {
	Vars          int
	Regimes       int
	RowsPerRegime int

	EdgeProb         float64
	CoefMin, CoefMax float64
	// Perturb is the standard deviation of the per-regime coefficient change.
	Perturb float64
	// FlipProb is the per-pair chance that a later regime toggles an edge.
	FlipProb float64
	// InterceptShift is added r times to every intercept of regime r.
	InterceptShift float64

	Noise      Noise
	NoiseScale float64

	Shuffle bool
	Seed    int64
}

// DefaultConfig returns a two-regime, five-variable mixture with sign-level
// coefficient changes.
func DefaultConfig() Config {
	return Config{
		Vars:          5,
		Regimes:       2,
		RowsPerRegime: 500,
		EdgeProb:      0.4,
		CoefMin:       0.5,
		CoefMax:       1.5,
		Perturb:       1.0,
		FlipProb:      0.1,
		Noise:         Gaussian,
		NoiseScale:    1,
		Shuffle:       true,
		Seed:          rng.DefaultSeed,
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.Vars < 1:
		return fmt.Errorf("%w: Vars=%d", ErrInvalidConfig, c.Vars)
	case c.Regimes < 1:
		return fmt.Errorf("%w: Regimes=%d", ErrInvalidConfig, c.Regimes)
	case c.RowsPerRegime < 1:
		return fmt.Errorf("%w: RowsPerRegime=%d", ErrInvalidConfig, c.RowsPerRegime)
	case c.EdgeProb < 0 || c.EdgeProb > 1:
		return fmt.Errorf("%w: EdgeProb=%g", ErrInvalidConfig, c.EdgeProb)
	case c.FlipProb < 0 || c.FlipProb > 1:
		return fmt.Errorf("%w: FlipProb=%g", ErrInvalidConfig, c.FlipProb)
	case c.CoefMin < 0 || c.CoefMax < c.CoefMin:
		return fmt.Errorf("%w: coefficient range [%g,%g]", ErrInvalidConfig, c.CoefMin, c.CoefMax)
	case c.Perturb < 0:
		return fmt.Errorf("%w: Perturb=%g", ErrInvalidConfig, c.Perturb)
	case c.NoiseScale <= 0:
		return fmt.Errorf("%w: NoiseScale=%g", ErrInvalidConfig, c.NoiseScale)
	case c.Noise != Gaussian && c.Noise != Laplace:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Noise)
	}

	return nil
}

// Names returns X1..Xp.
func Names(p int) []string {
	out := make([]string, p)
	for j := range out {
		out[j] = fmt.Sprintf("X%d", j+1)
	}

	return out
}

// sem holds the coefficients of one regime; coef[i*p+j] ≠ 0 means Xi → Xj.
type sem struct {
	p         int
	coef      []float64
	intercept []float64
}

// Mixture draws Regimes·RowsPerRegime rows, the regime label of every row and
// the true graph of every regime.
func Mixture(cfg Config) (*dataset.Dataset, []int, []*graph.Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("Mixture: %w", err)
	}
	p := cfg.Vars
	names := Names(p)

	base := baseSEM(cfg, rng.New(rng.DeriveSeed(cfg.Seed, streamStructure)))
	models := make([]sem, cfg.Regimes)
	graphs := make([]*graph.Graph, cfg.Regimes)
	n := cfg.Regimes * cfg.RowsPerRegime
	data, _ := matrix.NewDense(n, p)
	labels := make([]int, n)

	regimes := rng.New(rng.DeriveSeed(cfg.Seed, streamRegimes))
	var r, i int
	for r = 0; r < cfg.Regimes; r++ {
		src := rng.Derive(regimes, uint64(r))
		if r == 0 {
			models[r] = base
		} else {
			models[r] = derive(base, cfg, r, src)
		}
		g, err := models[r].graph(names)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("Mixture: %w", err)
		}
		graphs[r] = g

		for i = 0; i < cfg.RowsPerRegime; i++ {
			row := r*cfg.RowsPerRegime + i
			models[r].draw(data.RawRow(row), cfg, src)
			labels[row] = r
		}
	}

	if cfg.Shuffle {
		perm := rng.New(rng.DeriveSeed(cfg.Seed, streamShuffle)).Perm(n)
		shuffled, err := data.Induced(perm)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("Mixture: %w", err)
		}
		data = shuffled
		permuted := make([]int, n)
		for k, from := range perm {
			permuted[k] = labels[from]
		}
		labels = permuted
	}

	ds, err := dataset.New(names, data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("Mixture: %w", err)
	}

	return ds, labels, graphs, nil
}

func coefficient(cfg Config, src *rand.Rand) float64 {
	c := cfg.CoefMin + src.Float64()*(cfg.CoefMax-cfg.CoefMin)
	if src.Intn(2) == 0 {
		c = -c
	}

	return c
}

func baseSEM(cfg Config, src *rand.Rand) sem {
	p := cfg.Vars
	s := sem{p: p, coef: make([]float64, p*p), intercept: make([]float64, p)}
	var i, j int
	for i = 0; i < p; i++ {
		for j = i + 1; j < p; j++ {
			if src.Float64() < cfg.EdgeProb {
				s.coef[i*p+j] = coefficient(cfg, src)
			}
		}
	}

	return s
}

func derive(base sem, cfg Config, r int, src *rand.Rand) sem {
	p := base.p
	s := sem{p: p, coef: make([]float64, p*p), intercept: make([]float64, p)}
	copy(s.coef, base.coef)
	var i, j int
	for i = 0; i < p; i++ {
		s.intercept[i] = base.intercept[i] + float64(r)*cfg.InterceptShift
		for j = i + 1; j < p; j++ {
			k := i*p + j
			if src.Float64() < cfg.FlipProb {
				if s.coef[k] != 0 {
					s.coef[k] = 0
				} else {
					s.coef[k] = coefficient(cfg, src)
				}
				continue
			}
			if s.coef[k] != 0 && cfg.Perturb > 0 {
				s.coef[k] += cfg.Perturb * src.NormFloat64()
			}
		}
	}

	return s
}

func (s sem) graph(names []string) (*graph.Graph, error) {
	g := graph.New(names...)
	var i, j int
	for i = 0; i < s.p; i++ {
		for j = i + 1; j < s.p; j++ {
			if s.coef[i*s.p+j] == 0 {
				continue
			}
			if err := g.AddEdge(names[i], names[j]); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// draw fills row in topological (index) order.
func (s sem) draw(row []float64, cfg Config, src *rand.Rand) {
	var i, j int
	for j = 0; j < s.p; j++ {
		v := s.intercept[j] + noise(cfg, src)
		for i = 0; i < j; i++ {
			v += s.coef[i*s.p+j] * row[i]
		}
		row[j] = v
	}
}

// noise samples by inversion so that every draw comes from src.
func noise(cfg Config, src *rand.Rand) float64 {
	u := src.Float64()
	for u == 0 {
		u = src.Float64()
	}
	if cfg.Noise == Laplace {
		return distuv.Laplace{Mu: 0, Scale: cfg.NoiseScale}.Quantile(u)
	}

	return distuv.Normal{Mu: 0, Sigma: cfg.NoiseScale}.Quantile(u)
}
