package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/internal/cli"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func simulateTo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	truth := filepath.Join(dir, "truth.csv")
	_, _, err := execute(t, "simulate",
		"--vars", "3", "--rows", "150", "--edge-prob", "0",
		"--intercept-shift", "10", "--perturb", "0", "--flip-prob", "0",
		"--out", data, "--labels-out", truth)
	require.NoError(t, err)

	return data, truth
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "unmix v"+cli.Version+"\n", out)
}

func TestSimulate_WritesCSV(t *testing.T) {
	data, truth := simulateTo(t)

	raw, err := os.ReadFile(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "X1,X2,X3", lines[0])
	assert.Len(t, lines, 301)

	raw, err = os.ReadFile(truth)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "row,regime\n"))
}

func TestRun_JSON(t *testing.T) {
	data, _ := simulateTo(t)

	out, _, err := execute(t, "run", "--data", data, "--k", "2", "--robust-scale=false", "--per-cluster", "-o", "json")
	require.NoError(t, err)

	var rep struct {
		K      int     `json:"k"`
		Sizes  []int   `json:"sizes"`
		Labels []int   `json:"labels"`
		Graphs [][]any `json:"graphs"`
		Entropy *struct {
			Mean float64 `json:"mean"`
		} `json:"entropy"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.K)
	require.Len(t, rep.Sizes, 2)
	assert.Equal(t, 300, rep.Sizes[0]+rep.Sizes[1])
	assert.Len(t, rep.Labels, 300)
	assert.Len(t, rep.Graphs, 2)
	require.NotNil(t, rep.Entropy)
	assert.GreaterOrEqual(t, rep.Entropy.Mean, 0.0)
	assert.LessOrEqual(t, rep.Entropy.Mean, 1.0+1e-9)
}

func TestRun_ScoresAgainstTruth(t *testing.T) {
	data, truth := simulateTo(t)

	out, _, err := execute(t, "run", "--data", data, "--truth", truth, "-o", "json")
	require.NoError(t, err)
	var rep struct {
		ARI *float64 `json:"ari"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotNil(t, rep.ARI)
	assert.GreaterOrEqual(t, *rep.ARI, -1.0)
	assert.LessOrEqual(t, *rep.ARI, 1.0+1e-9)

	out, _, err = execute(t, "run", "--data", data, "--truth", truth)
	require.NoError(t, err)
	assert.Contains(t, out, "Adjusted Rand index vs truth")

	_, _, err = execute(t, "run", "--data", data, "--truth", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestSimulate_WritesGraphs(t *testing.T) {
	dir := t.TempDir()
	graphs := filepath.Join(dir, "graphs.csv")
	_, _, err := execute(t, "simulate", "--vars", "3", "--rows", "20", "--edge-prob", "1", "--flip-prob", "0",
		"--out", filepath.Join(dir, "data.csv"), "--graphs-out", graphs)
	require.NoError(t, err)

	raw, err := os.ReadFile(graphs)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "regime,from,to", lines[0])
	assert.Len(t, lines, 7)
	assert.Contains(t, lines, "0,X1,X2")
	assert.Contains(t, lines, "1,X2,X3")
}

func TestRun_MatchesTrueGraphs(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	graphs := filepath.Join(dir, "graphs.csv")
	_, _, err := execute(t, "simulate",
		"--vars", "3", "--rows", "150", "--edge-prob", "0",
		"--intercept-shift", "10", "--perturb", "0", "--flip-prob", "0",
		"--out", data, "--graphs-out", graphs)
	require.NoError(t, err)
	raw, err := os.ReadFile(graphs)
	require.NoError(t, err)
	assert.Equal(t, "regime,from,to\n0,,\n1,,\n", string(raw))

	out, _, err := execute(t, "run", "--data", data, "--k", "2", "--robust-scale=false",
		"--per-cluster", "--truth-graphs", graphs, "-o", "json")
	require.NoError(t, err)
	var rep struct {
		GraphMatches []struct {
			Cluster int `json:"cluster"`
			Regime  int `json:"regime"`
			SHD     int `json:"shd"`
		} `json:"graph_matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.GraphMatches, 2)
	for k, m := range rep.GraphMatches {
		assert.Equal(t, k, m.Cluster)
		assert.Contains(t, []int{0, 1}, m.Regime)
		assert.GreaterOrEqual(t, m.SHD, 0)
	}

	out, _, err = execute(t, "run", "--data", data, "--k", "2", "--per-cluster", "--truth-graphs", graphs)
	require.NoError(t, err)
	assert.Contains(t, out, "Graph recovery")

	_, _, err = execute(t, "run", "--data", data, "--truth-graphs", graphs)
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("regime,from,to\n0,X1,Q\n"), 0o600))
	_, _, err = execute(t, "run", "--data", data, "--per-cluster", "--truth-graphs", bad)
	require.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestSelectK_Table(t *testing.T) {
	data, _ := simulateTo(t)

	out, stderr, err := execute(t, "select-k", "--data", data, "--kmin", "1", "--kmax", "3",
		"--robust-scale=false", "--parallelism", "2", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "K selection")
	assert.Contains(t, out, "Clusters")
	assert.Contains(t, stderr, "unmix_fits_total")
}

func TestRun_Errors(t *testing.T) {
	_, _, err := execute(t, "run")
	assert.Error(t, err)

	_, _, err = execute(t, "run", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	data, _ := simulateTo(t)
	_, _, err = execute(t, "run", "--data", data, "--cov", "banded")
	assert.Error(t, err)
}
