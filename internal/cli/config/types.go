// Package config loads CLI configuration from defaults, a YAML file,
// UNMIX_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/unmix/gmm"
	"github.com/katalvlaran/unmix/search"
	"github.com/katalvlaran/unmix/simulate"
	"github.com/katalvlaran/unmix/superset"
	"github.com/katalvlaran/unmix/unmix"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config is the flat CLI configuration. Every key is reachable as a YAML key,
// an UNMIX_<KEY> environment variable and a --<key-with-dashes> flag.
type Config struct {
	Data        string `koanf:"data"`
	Output      string `koanf:"output"`
	Verbose     bool   `koanf:"verbose"`
	Parallelism int    `koanf:"parallelism"`
	Metrics     bool   `koanf:"metrics"`
	Seed        int64  `koanf:"seed"`

	// unmixing
	K              int     `koanf:"k"`
	KMin           int     `koanf:"kmin"`
	KMax           int     `koanf:"kmax"`
	Superset       bool    `koanf:"superset"`
	TopM           int     `koanf:"top_m"`
	Score          string  `koanf:"score"`
	Bagging        bool    `koanf:"bagging"`
	Bags           int     `koanf:"bags"`
	BagFraction    float64 `koanf:"bag_fraction"`
	RobustScale    bool    `koanf:"robust_scale"`
	Cov            string  `koanf:"cov"`
	EMMaxIters     int     `koanf:"em_max_iters"`
	EMTol          float64 `koanf:"em_tol"`
	Ridge          float64 `koanf:"ridge"`
	KMeansRestarts int     `koanf:"kmeans_restarts"`
	KMeansMaxIter  int     `koanf:"kmeans_max_iter"`
	Shrinkage      float64 `koanf:"shrinkage"`
	CovRidgeRel    float64 `koanf:"cov_ridge_rel"`
	AnnealSteps    int     `koanf:"anneal_steps"`
	AnnealStartT   float64 `koanf:"anneal_start_t"`

	// Truth is an optional row,regime CSV the partition is scored against.
	Truth string `koanf:"truth"`
	// TruthGraphs is an optional regime,from,to CSV the per-cluster graphs
	// are matched against.
	TruthGraphs string `koanf:"truth_graphs"`

	// structure search
	PerCluster bool    `koanf:"per_cluster"`
	Alpha      float64 `koanf:"alpha"`
	Depth      int     `koanf:"depth"`

	// simulation
	Vars           int     `koanf:"vars"`
	Regimes        int     `koanf:"regimes"`
	Rows           int     `koanf:"rows"`
	EdgeProb       float64 `koanf:"edge_prob"`
	FlipProb       float64 `koanf:"flip_prob"`
	Perturb        float64 `koanf:"perturb"`
	InterceptShift float64 `koanf:"intercept_shift"`
	Noise          string  `koanf:"noise"`
	Out            string  `koanf:"out"`
	LabelsOut      string  `koanf:"labels_out"`
	GraphsOut      string  `koanf:"graphs_out"`
}

// defaults flattens the library defaults into koanf keys.
func defaults() map[string]interface{} {
	u := unmix.DefaultConfig()
	s := simulate.DefaultConfig()
	fz := search.NewFisherZ()

	return map[string]interface{}{
		"output":          OutputTable,
		"verbose":         false,
		"parallelism":     1,
		"metrics":         false,
		"seed":            u.Seed,
		"k":               u.K,
		"kmin":            u.KMin,
		"kmax":            u.KMax,
		"superset":        u.UseParentSuperset,
		"top_m":           u.Superset.TopM,
		"score":           strings.ToLower(u.Superset.ScoreType.String()),
		"bagging":         u.Superset.UseBagging,
		"bags":            u.Superset.Bags,
		"bag_fraction":    u.Superset.BagFraction,
		"robust_scale":    u.RobustScaleResiduals,
		"cov":             strings.ToLower(u.CovarianceType.String()),
		"em_max_iters":    u.EMMaxIters,
		"em_tol":          u.EMTol,
		"ridge":           u.Ridge,
		"kmeans_restarts": u.KMeansRestarts,
		"kmeans_max_iter": u.KMeansMaxIter,
		"shrinkage":       u.CovShrinkage,
		"cov_ridge_rel":   u.CovRidgeRel,
		"anneal_steps":    u.AnnealSteps,
		"anneal_start_t":  u.AnnealStartT,
		"per_cluster":     false,
		"alpha":           fz.Alpha,
		"depth":           fz.Depth,
		"vars":            s.Vars,
		"regimes":         s.Regimes,
		"rows":            s.RowsPerRegime,
		"edge_prob":       s.EdgeProb,
		"flip_prob":       s.FlipProb,
		"perturb":         s.Perturb,
		"intercept_shift": s.InterceptShift,
		"noise":           s.Noise.String(),
	}
}

// UnmixConfig maps the CLI keys onto unmix.Config and validates it.
func (c *Config) UnmixConfig() (unmix.Config, error) {
	cov, err := gmm.ParseCovarianceType(c.Cov)
	if err != nil {
		return unmix.Config{}, fmt.Errorf("cov: %w", err)
	}
	score, err := superset.ParseScoreType(c.Score)
	if err != nil {
		return unmix.Config{}, fmt.Errorf("score: %w", err)
	}

	u := unmix.Config{
		K:                    c.K,
		KMin:                 c.KMin,
		KMax:                 c.KMax,
		UseParentSuperset:    c.Superset,
		RobustScaleResiduals: c.RobustScale,
		Superset: superset.Config{
			TopM:        c.TopM,
			ScoreType:   score,
			UseBagging:  c.Bagging,
			Bags:        c.Bags,
			BagFraction: c.BagFraction,
			Seed:        c.Seed,
		},
		CovarianceType: cov,
		EMMaxIters:     c.EMMaxIters,
		EMTol:          c.EMTol,
		Ridge:          c.Ridge,
		KMeansRestarts: c.KMeansRestarts,
		KMeansMaxIter:  c.KMeansMaxIter,
		Seed:           c.Seed,
		CovShrinkage:   c.Shrinkage,
		CovRidgeRel:    c.CovRidgeRel,
		AnnealSteps:    c.AnnealSteps,
		AnnealStartT:   c.AnnealStartT,
	}
	if err = u.Validate(); err != nil {
		return unmix.Config{}, err
	}

	return u, nil
}

// SimulateConfig maps the CLI keys onto simulate.Config and validates it.
func (c *Config) SimulateConfig() (simulate.Config, error) {
	noise, err := simulate.ParseNoise(strings.ToLower(strings.TrimSpace(c.Noise)))
	if err != nil {
		return simulate.Config{}, err
	}
	s := simulate.DefaultConfig()
	s.Vars = c.Vars
	s.Regimes = c.Regimes
	s.RowsPerRegime = c.Rows
	s.EdgeProb = c.EdgeProb
	s.FlipProb = c.FlipProb
	s.Perturb = c.Perturb
	s.InterceptShift = c.InterceptShift
	s.Noise = noise
	s.Seed = c.Seed
	if err = s.Validate(); err != nil {
		return simulate.Config{}, err
	}

	return s, nil
}

// FisherZ returns the structure search configured by alpha and depth.
func (c *Config) FisherZ() search.FisherZ {
	return search.FisherZ{Alpha: c.Alpha, Depth: c.Depth}
}
