// SPDX-License-Identifier: MIT
package kmeans_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/unmix/kmeans"
	"github.com/katalvlaran/unmix/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs(t *testing.T, nPer int, seed int64) (*matrix.Dense, []int) {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	rows := make([][]float64, 0, 2*nPer)
	truth := make([]int, 0, 2*nPer)
	for c, mu := range []float64{0, 10} {
		for i := 0; i < nPer; i++ {
			rows = append(rows, []float64{mu + r.NormFloat64(), mu + r.NormFloat64()})
			truth = append(truth, c)
		}
	}
	X, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return X, truth
}

func TestCluster_SeparatesBlobs(t *testing.T) {
	t.Parallel()

	X, truth := blobs(t, 100, 1)
	res, err := kmeans.ClusterWithRestarts(X, 2, 50, 13, 5)
	require.NoError(t, err)

	// Every ground-truth group maps onto one label.
	first := res.Labels[0]
	for i, l := range res.Labels {
		if truth[i] == 0 {
			assert.Equal(t, first, l)
		} else {
			assert.NotEqual(t, first, l)
		}
	}

	sse, err := kmeans.SSE(X, res.Labels, res.Centroids)
	require.NoError(t, err)
	assert.InDelta(t, res.SSE, sse, 1e-9)
}

func TestCluster_EmptyClusterKeepsSeedCentroid(t *testing.T) {
	t.Parallel()

	X, err := matrix.FromRows([][]float64{{0, 0}, {0, 0}, {10, 10}, {10, 10}})
	require.NoError(t, err)

	for _, seed := range []int64{1, 2, 3, 42} {
		seeded, err := kmeans.Cluster(X, 3, 1, seed)
		require.NoError(t, err)
		res, err := kmeans.Cluster(X, 3, 50, seed)
		require.NoError(t, err)

		// The third seed duplicates a point and loses every tie to a lower index.
		assert.NotContains(t, res.Labels, 2, "seed %d", seed)
		kept := res.Centroids.RawRow(2)
		assert.Equal(t, seeded.Centroids.RawRow(2), kept, "seed %d", seed)
		assert.Contains(t, [][]float64{{0, 0}, {10, 10}}, kept, "seed %d", seed)

		assert.ElementsMatch(t, [][]float64{{0, 0}, {10, 10}},
			[][]float64{res.Centroids.RawRow(0), res.Centroids.RawRow(1)}, "seed %d", seed)
		assert.Equal(t, 0.0, res.SSE, "seed %d", seed)
	}
}

func TestCluster_KEqualsNHasZeroSSE(t *testing.T) {
	t.Parallel()

	X, err := matrix.FromRows([][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {-3, 2}})
	require.NoError(t, err)
	res, err := kmeans.Cluster(X, X.Rows(), 20, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.SSE)

	seen := map[int]bool{}
	for _, l := range res.Labels {
		seen[l] = true
	}
	assert.Len(t, seen, X.Rows())
}

func TestCluster_DeterministicForSeed(t *testing.T) {
	t.Parallel()

	X, _ := blobs(t, 50, 2)
	a, err := kmeans.ClusterWithRestarts(X, 3, 50, 99, 4)
	require.NoError(t, err)
	b, err := kmeans.ClusterWithRestarts(X, 3, 50, 99, 4)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Centroids.RawData(), b.Centroids.RawData())
	assert.Equal(t, a.Seed, b.Seed)
}

func TestClusterWithRestarts_NoWorseThanSingleRuns(t *testing.T) {
	t.Parallel()

	X, _ := blobs(t, 40, 3)
	best, err := kmeans.ClusterWithRestarts(X, 4, 50, 5, 6)
	require.NoError(t, err)
	single, err := kmeans.Cluster(X, 4, 50, best.Seed)
	require.NoError(t, err)
	assert.Equal(t, best.SSE, single.SSE)
}

func TestCluster_IdenticalPointsFallBackToUniform(t *testing.T) {
	t.Parallel()

	X, err := matrix.FromRows([][]float64{{1, 1}, {1, 1}, {1, 1}})
	require.NoError(t, err)
	res, err := kmeans.Cluster(X, 2, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.SSE)
	// Ties go to the lowest index; cluster 1 stays empty.
	assert.Equal(t, []int{0, 0, 0}, res.Labels)
}

func TestCluster_Errors(t *testing.T) {
	t.Parallel()

	X, _ := matrix.FromRows([][]float64{{1}, {2}})
	empty, _ := matrix.NewDense(0, 2)

	tests := []struct {
		name    string
		X       *matrix.Dense
		K, iter int
		want    error
	}{
		{"nil", nil, 1, 10, kmeans.ErrEmptyData},
		{"zero rows", empty, 1, 10, kmeans.ErrEmptyData},
		{"K zero", X, 0, 10, kmeans.ErrInvalidK},
		{"K > n", X, 3, 10, kmeans.ErrInvalidK},
		{"maxIter", X, 1, 0, kmeans.ErrInvalidMaxIter},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := kmeans.Cluster(tc.X, tc.K, tc.iter, 1)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
