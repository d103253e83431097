// SPDX-License-Identifier: MIT
package simulate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/simulate"
)

func TestMixture_ShapesAndLabels(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.Regimes = 3
	cfg.RowsPerRegime = 50
	ds, labels, graphs, err := simulate.Mixture(cfg)
	require.NoError(t, err)

	assert.Equal(t, 150, ds.Rows())
	assert.Equal(t, 5, ds.Cols())
	assert.Equal(t, simulate.Names(5), ds.Names())
	require.Len(t, labels, 150)
	require.Len(t, graphs, 3)

	counts := make([]int, 3)
	for _, l := range labels {
		counts[l]++
	}
	assert.Equal(t, []int{50, 50, 50}, counts)

	for _, g := range graphs {
		assert.Equal(t, 5, g.NodeCount())
		for _, e := range g.Edges() {
			assert.Less(t, e.From, e.To, "edges follow the variable order")
		}
	}
}

func TestMixture_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.RowsPerRegime = 40
	a, la, _, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	b, lb, _, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Matrix().RawData(), b.Matrix().RawData())
	assert.Equal(t, la, lb)

	cfg.Seed = 77
	c, _, _, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Matrix().RawData(), c.Matrix().RawData())
}

func TestMixture_RegimeStreamsIndependentOfCount(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.RowsPerRegime = 20
	cfg.Shuffle = false
	cfg.Regimes = 2
	two, _, g2, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	cfg.Regimes = 3
	three, _, g3, err := simulate.Mixture(cfg)
	require.NoError(t, err)

	var i int
	for i = 0; i < 40; i++ {
		assert.Equal(t, two.RawRow(i), three.RawRow(i), "row %d", i)
	}
	assert.Equal(t, g2[0].Edges(), g3[0].Edges())
	assert.Equal(t, g2[1].Edges(), g3[1].Edges())
	assert.NotEqual(t, three.RawRow(0), three.RawRow(20), "regimes draw from distinct streams")
}

func TestMixture_NoShuffleKeepsRegimeBlocks(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.RowsPerRegime = 10
	cfg.Shuffle = false
	_, labels, _, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	for i, l := range labels {
		assert.Equal(t, i/10, l)
	}
}

func TestMixture_InterceptShiftAndNoise(t *testing.T) {
	t.Parallel()

	for _, nz := range []simulate.Noise{simulate.Gaussian, simulate.Laplace} {
		nz := nz
		t.Run(nz.String(), func(t *testing.T) {
			t.Parallel()
			cfg := simulate.DefaultConfig()
			cfg.Vars = 1
			cfg.RowsPerRegime = 4000
			cfg.InterceptShift = 5
			cfg.Noise = nz
			cfg.Shuffle = false
			ds, _, _, err := simulate.Mixture(cfg)
			require.NoError(t, err)

			col, err := ds.ColumnAt(0)
			require.NoError(t, err)
			m0, v0 := stat.MeanVariance(col[:4000], nil)
			m1, _ := stat.MeanVariance(col[4000:], nil)
			assert.InDelta(t, 0, m0, 0.1)
			assert.InDelta(t, 5, m1, 0.1)

			want := 1.0
			if nz == simulate.Laplace {
				want = 2.0
			}
			assert.InDelta(t, want, v0, 0.3)
			assert.False(t, math.IsNaN(v0))
		})
	}
}

func TestMixture_FlipsChangeGraphs(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.Vars = 8
	cfg.RowsPerRegime = 5
	cfg.FlipProb = 1
	_, _, graphs, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	assert.Equal(t, 28, graphs[0].EdgeCount()+graphs[1].EdgeCount())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*simulate.Config)
	}{
		{"vars", func(c *simulate.Config) { c.Vars = 0 }},
		{"regimes", func(c *simulate.Config) { c.Regimes = 0 }},
		{"rows", func(c *simulate.Config) { c.RowsPerRegime = 0 }},
		{"edge prob", func(c *simulate.Config) { c.EdgeProb = 1.5 }},
		{"flip prob", func(c *simulate.Config) { c.FlipProb = -0.1 }},
		{"coef range", func(c *simulate.Config) { c.CoefMax = 0.1 }},
		{"perturb", func(c *simulate.Config) { c.Perturb = -1 }},
		{"noise scale", func(c *simulate.Config) { c.NoiseScale = 0 }},
		{"noise", func(c *simulate.Config) { c.Noise = 9 }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := simulate.DefaultConfig()
			tc.mutate(&cfg)
			_, _, _, err := simulate.Mixture(cfg)
			require.ErrorIs(t, err, simulate.ErrInvalidConfig)
		})
	}
}

func TestParseNoise(t *testing.T) {
	t.Parallel()

	n, err := simulate.ParseNoise("laplace")
	require.NoError(t, err)
	assert.Equal(t, simulate.Laplace, n)
	_, err = simulate.ParseNoise("cauchy")
	assert.ErrorIs(t, err, simulate.ErrInvalidConfig)
}

func TestMixture_GraphsAreDAGs(t *testing.T) {
	t.Parallel()

	cfg := simulate.DefaultConfig()
	cfg.Vars = 7
	cfg.Regimes = 4
	cfg.RowsPerRegime = 3
	cfg.FlipProb = 0.5
	_, _, graphs, err := simulate.Mixture(cfg)
	require.NoError(t, err)
	for _, g := range graphs {
		order, err := graph.TopologicalSort(g)
		require.NoError(t, err)
		assert.Len(t, order, 7)
	}
}
