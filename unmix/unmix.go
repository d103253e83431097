// SPDX-License-Identifier: MIT

// Package unmix separates a dataset drawn from several causal regimes into
// per-regime partitions.
//
// Data flow:
//
//	dataset → (parent superset | pooled graph) → residual matrix
//	        → robust scaling → k-means init → EM fit → MAP labels
//	        → partitions of the original rows → (per-cluster graph search)
//
// Run fits a fixed K; SelectK sweeps K and keeps the highest Score (−BIC).
//
// Concurrency:
//   - With WithParallelism(n > 1) the EM fits of a SelectK sweep and the
//     per-cluster searches run on an errgroup. Residuals are always built
//     sequentially, so the Regressor is never shared across goroutines.
//   - A per-cluster GraphSearch must be safe for concurrent use when n > 1.
//   - Every unit of work writes into its own result slot and owns its seeds,
//     so parallel output is identical to sequential output.
package unmix

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/gmm"
	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/matrix"
	"github.com/katalvlaran/unmix/regress"
	"github.com/katalvlaran/unmix/residual"
	"github.com/katalvlaran/unmix/superset"
)

// Result is the outcome of Run or SelectK. It is read-only once returned.
type Result struct {
	// Labels[i] ∈ [0,K) is the MAP component of dataset row i.
	Labels []int
	K      int
	// Partitions has exactly K entries; an empty cluster is a zero-row
	// dataset with the full schema.
	Partitions []*dataset.Dataset
	Model      *gmm.Model
	// Graphs holds one per-cluster search result per partition (nil for
	// empty partitions), or is nil when no per-cluster search was supplied.
	Graphs []*graph.Graph

	// BIC is −2·LL + params·log n (lower is better); Score = −BIC.
	BIC   float64
	Score float64

	// Candidates lists every K tried by SelectK in ascending order.
	Candidates []Candidate
}

// Candidate summarizes one K of a SelectK sweep.
type Candidate struct {
	K             int
	BIC           float64
	Score         float64
	LogLikelihood float64
	Iterations    int
	Converged     bool
}

// Sizes returns the row count of every partition.
func (r *Result) Sizes() []int {
	out := make([]int, len(r.Partitions))
	for k, p := range r.Partitions {
		out[k] = p.Rows()
	}

	return out
}

// Run fits a K-component mixture (K from cfg) on the residual signatures of ds.
//
// Errors: ErrEmptyDataset, ErrNilRegressor, ErrInvalidConfig (including
// UseParentSuperset=false without WithPooledSearch), and wrapped errors of the
// residual, gmm and search stages.
func Run(ds *dataset.Dataset, cfg Config, reg regress.Regressor, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	if err := checkInputs(ds, cfg, reg, o); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if cfg.K > ds.Rows() {
		return nil, fmt.Errorf("Run: %w: K=%d > n=%d", ErrInvalidConfig, cfg.K, ds.Rows())
	}

	X, err := ResidualFeatures(ds, cfg, reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	model, err := fit(X, cfg, o)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	res, err := assemble(ds, model, o)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	o.logger.Info().
		Str("component", "unmix").
		Int("k", res.K).
		Ints("sizes", res.Sizes()).
		Float64("bic", res.BIC).
		Msg("run finished")

	return res, nil
}

// SelectK fits every K in [kmin, kmax] and returns the full result for the
// highest Score. Ties keep the first K seen.
//
// Residuals are rebuilt for each K from the same seeds, so every candidate is
// scored on identically constructed features. cfg.K is not consulted.
func SelectK(ds *dataset.Dataset, kmin, kmax int, reg regress.Regressor, cfg Config, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	if err := checkInputs(ds, cfg.withK(kmin), reg, o); err != nil {
		return nil, fmt.Errorf("SelectK: %w", err)
	}
	if kmin < 1 || kmin > kmax || kmax > ds.Rows() {
		return nil, fmt.Errorf("SelectK: %w: need 1 <= kmin(%d) <= kmax(%d) <= n(%d)",
			ErrInvalidConfig, kmin, kmax, ds.Rows())
	}

	count := kmax - kmin + 1
	features := make([]*matrix.Dense, count)
	var idx int
	var err error
	for idx = 0; idx < count; idx++ {
		features[idx], err = ResidualFeatures(ds, cfg.withK(kmin+idx), reg, opts...)
		if err != nil {
			return nil, fmt.Errorf("SelectK(K=%d): %w", kmin+idx, err)
		}
	}

	models := make([]*gmm.Model, count)
	var g errgroup.Group
	g.SetLimit(o.parallelism)
	for idx = 0; idx < count; idx++ {
		idx := idx
		g.Go(func() error {
			m, ferr := fit(features[idx], cfg.withK(kmin+idx), o)
			if ferr != nil {
				return fmt.Errorf("K=%d: %w", kmin+idx, ferr)
			}
			models[idx] = m
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("SelectK: %w", err)
	}

	n := ds.Rows()
	candidates := make([]Candidate, count)
	best := -1
	for idx = 0; idx < count; idx++ {
		m := models[idx]
		bic := m.BIC(n)
		candidates[idx] = Candidate{
			K:             m.K,
			BIC:           bic,
			Score:         -bic,
			LogLikelihood: m.LogLikelihood,
			Iterations:    m.Iterations,
			Converged:     m.Converged,
		}
		o.logger.Debug().
			Str("component", "unmix").
			Int("k", m.K).
			Float64("bic", bic).
			Float64("ll", m.LogLikelihood).
			Msg("candidate scored")
		if best < 0 || candidates[idx].Score > candidates[best].Score {
			best = idx
		}
	}

	res, err := assemble(ds, models[best], o)
	if err != nil {
		return nil, fmt.Errorf("SelectK: %w", err)
	}
	res.Candidates = candidates
	o.metrics.observeSelected(res.K)
	o.logger.Info().
		Str("component", "unmix").
		Int("kmin", kmin).
		Int("kmax", kmax).
		Int("selected", res.K).
		Float64("bic", res.BIC).
		Msg("K selected")

	return res, nil
}

// ResidualFeatures builds the n×p clustering features for ds: residuals of
// every variable on its superset or pooled-graph parents, robustly scaled when
// cfg.RobustScaleResiduals is set. Row i corresponds to dataset row i.
func ResidualFeatures(ds *dataset.Dataset, cfg Config, reg regress.Regressor, opts ...Option) (*matrix.Dense, error) {
	o := newOptions(opts)
	if err := checkInputs(ds, cfg, reg, o); err != nil {
		return nil, fmt.Errorf("ResidualFeatures: %w", err)
	}

	var src residual.ParentSource
	if cfg.UseParentSuperset {
		pm, err := superset.Build(ds, cfg.Superset, o.shallow)
		if err != nil {
			return nil, fmt.Errorf("ResidualFeatures: superset: %w", err)
		}
		src = pm
	} else {
		g, err := o.pooled.Search(ds)
		if err != nil {
			return nil, fmt.Errorf("ResidualFeatures: pooled search: %w", err)
		}
		if g == nil {
			return nil, fmt.Errorf("ResidualFeatures: pooled search: %w: nil graph", ErrInvalidConfig)
		}
		src = g
	}

	X, err := residual.Matrix(ds, src, reg)
	if err != nil {
		return nil, fmt.Errorf("ResidualFeatures: %w", err)
	}
	if cfg.RobustScaleResiduals {
		X = residual.RobustStandardizeInPlace(X)
	}
	o.logger.Debug().
		Str("component", "unmix").
		Bool("superset", cfg.UseParentSuperset).
		Int("rows", X.Rows()).
		Int("cols", X.Cols()).
		Msg("residuals built")

	return X, nil
}

func checkInputs(ds *dataset.Dataset, cfg Config, reg regress.Regressor, o *options) error {
	if ds == nil || ds.Rows() == 0 || ds.Cols() == 0 {
		return ErrEmptyDataset
	}
	if reg == nil {
		return ErrNilRegressor
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.UseParentSuperset && o.pooled == nil {
		return fmt.Errorf("%w: pooled search required when parent superset is disabled", ErrInvalidConfig)
	}
	if cfg.UseParentSuperset && cfg.Superset.UseBagging && o.shallow == nil {
		return fmt.Errorf("%w: bagging requires a shallow search", ErrInvalidConfig)
	}

	return nil
}

func fit(X *matrix.Dense, cfg Config, o *options) (*gmm.Model, error) {
	gc := cfg.gmmConfig(cfg.K)
	logger := o.logger
	gc.Logger = &logger

	start := time.Now()
	m, err := gmm.Fit(X, gc)
	iterations := 0
	if m != nil {
		iterations = m.Iterations
	}
	o.metrics.observeFit(strconv.Itoa(cfg.K), start, iterations, err)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().
		Str("component", "unmix").
		Int("k", cfg.K).
		Int("iterations", m.Iterations).
		Bool("converged", m.Converged).
		Float64("ll", m.LogLikelihood).
		Msg("em finished")

	return m, nil
}

// assemble labels rows, partitions ds and runs the per-cluster search.
func assemble(ds *dataset.Dataset, m *gmm.Model, o *options) (*Result, error) {
	labels := gmm.MapLabels(m.Responsibilities)
	parts, err := splitByLabels(ds, labels, m.K)
	if err != nil {
		return nil, err
	}
	bic := m.BIC(ds.Rows())
	res := &Result{
		Labels:     labels,
		K:          m.K,
		Partitions: parts,
		Model:      m,
		BIC:        bic,
		Score:      -bic,
	}
	if o.perCluster != nil {
		if res.Graphs, err = searchPerCluster(parts, o); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// splitByLabels returns K datasets holding the rows of each label in their
// original order. Labels with no rows yield zero-row datasets.
func splitByLabels(ds *dataset.Dataset, labels []int, K int) ([]*dataset.Dataset, error) {
	if len(labels) != ds.Rows() {
		return nil, fmt.Errorf("splitByLabels: %w: %d labels for %d rows",
			ErrInvalidConfig, len(labels), ds.Rows())
	}
	buckets := make([][]int, K)
	for i, l := range labels {
		if l < 0 || l >= K {
			return nil, fmt.Errorf("splitByLabels: label %d outside [0,%d)", l, K)
		}
		buckets[l] = append(buckets[l], i)
	}

	out := make([]*dataset.Dataset, K)
	var err error
	for k := range buckets {
		if out[k], err = ds.SubsetRows(buckets[k]); err != nil {
			return nil, fmt.Errorf("splitByLabels: %w", err)
		}
	}

	return out, nil
}

func searchPerCluster(parts []*dataset.Dataset, o *options) ([]*graph.Graph, error) {
	graphs := make([]*graph.Graph, len(parts))
	var g errgroup.Group
	g.SetLimit(o.parallelism)
	for k := range parts {
		k := k
		if parts[k].Rows() == 0 {
			continue
		}
		g.Go(func() error {
			gr, err := o.perCluster.Search(parts[k])
			if err != nil {
				return fmt.Errorf("per-cluster search %d: %w", k, err)
			}
			graphs[k] = gr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return graphs, nil
}
