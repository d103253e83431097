// SPDX-License-Identifier: MIT

// Package superset screens, for every variable, a deliberately over-inclusive
// list of candidate parents. The lists feed residual construction when no
// trusted pooled graph is available.
//
// Implementation (Build):
//   - Stage 1: per column, precompute the vector the score type operates on
//     (raw values, or average ranks for Spearman).
//   - Stage 2: per target, score every other column, keep the TopM largest
//     |score| with ties broken by column index.
//   - Stage 3 (bagging): for b in [0,Bags) draw ⌊BagFraction·n⌋ (min 2) rows
//     without replacement from rng.DeriveSeed(Seed, b), run the shallow search
//     on the sub-sample and append newly discovered parents.
//
// Determinism:
//   - Output depends only on the dataset, Config and the shallow search.
package superset

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/internal/rng"
	"github.com/katalvlaran/unmix/matrix"
	"github.com/katalvlaran/unmix/search"
)

// ParentMap maps a variable to its ordered candidate parents.
// No variable lists itself and no list holds duplicates.
type ParentMap map[string][]string

// Parents returns a copy of the candidate list for name (nil if absent).
func (p ParentMap) Parents(name string) []string {
	ps, ok := p[name]
	if !ok {
		return nil
	}

	return append([]string(nil), ps...)
}

// Build screens candidate parents for every column of ds.
// shallow is only consulted when cfg.UseBagging is set and must then be non-nil.
func Build(ds *dataset.Dataset, cfg Config, shallow search.GraphSearch) (ParentMap, error) {
	if ds == nil || ds.Rows() == 0 || ds.Cols() == 0 {
		return nil, fmt.Errorf("Build: %w", ErrEmptyDataset)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	if cfg.UseBagging && shallow == nil {
		return nil, fmt.Errorf("Build: %w: bagging requires a shallow search", ErrInvalidConfig)
	}

	names := ds.Names()
	p := len(names)
	cols := make([][]float64, p)
	for j := range cols {
		col, err := ds.ColumnAt(j)
		if err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
		if cfg.ScoreType == Spearman {
			col = matrix.Ranks(col)
		}
		cols[j] = col
	}

	out := make(ParentMap, p)
	scores := make([]float64, p)
	var t, j int
	for t = 0; t < p; t++ {
		cand := make([]int, 0, p-1)
		for j = 0; j < p; j++ {
			if j == t {
				continue
			}
			s, err := score(cfg.ScoreType, cols[t], cols[j])
			if err != nil {
				return nil, fmt.Errorf("Build: %w", err)
			}
			scores[j] = math.Abs(s)
			cand = append(cand, j)
		}
		sort.SliceStable(cand, func(a, b int) bool { return scores[cand[a]] > scores[cand[b]] })
		if len(cand) > cfg.TopM {
			cand = cand[:cfg.TopM]
		}
		list := make([]string, len(cand))
		for k, c := range cand {
			list[k] = names[c]
		}
		out[names[t]] = list
	}

	if cfg.UseBagging {
		if err := bag(ds, cfg, shallow, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func score(st ScoreType, x, y []float64) (float64, error) {
	switch st {
	case Kendall:
		return matrix.Kendall(x, y)
	default:
		// Spearman columns already hold ranks.
		return matrix.Pearson(x, y)
	}
}

// bagSize is ⌊frac·n⌋ clamped to [min(2,n), n].
func bagSize(n int, frac float64) int {
	m := int(math.Floor(frac * float64(n)))
	if m < 2 {
		m = 2
	}
	if m > n {
		m = n
	}

	return m
}

func bag(ds *dataset.Dataset, cfg Config, shallow search.GraphSearch, out ParentMap) error {
	n := ds.Rows()
	m := bagSize(n, cfg.BagFraction)
	names := ds.Names()

	seen := make(map[string]map[string]struct{}, len(names))
	for _, v := range names {
		set := make(map[string]struct{}, len(out[v]))
		for _, pa := range out[v] {
			set[pa] = struct{}{}
		}
		seen[v] = set
	}

	for b := 0; b < cfg.Bags; b++ {
		r := rng.New(rng.DeriveSeed(cfg.Seed, uint64(b)))
		idx := rng.SampleWithoutReplacement(n, m, r)
		sort.Ints(idx)
		sub, err := ds.SubsetRows(idx)
		if err != nil {
			return fmt.Errorf("Build: bag %d: %w", b, err)
		}
		g, err := shallow.Search(sub)
		if err != nil {
			return fmt.Errorf("Build: bag %d: %w", b, err)
		}
		if g == nil {
			continue
		}
		for _, v := range names {
			for _, pa := range g.Parents(v) {
				if pa == v {
					continue
				}
				if _, ok := ds.Index(pa); !ok {
					continue
				}
				if _, dup := seen[v][pa]; dup {
					continue
				}
				seen[v][pa] = struct{}{}
				out[v] = append(out[v], pa)
			}
		}
	}

	return nil
}
