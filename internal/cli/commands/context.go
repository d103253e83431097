// Package commands implements the unmix subcommands.
package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/internal/cli/config"
)

// Env carries the resolved configuration and shared services into a command.
type Env struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry
}

type envKey struct{}

// WithEnv stores env in ctx.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// GetEnv retrieves the Env stored by the root command.
func GetEnv(ctx context.Context) (*Env, error) {
	if env, ok := ctx.Value(envKey{}).(*Env); ok && env != nil {
		return env, nil
	}

	return nil, fmt.Errorf("configuration not loaded")
}

// NewLogger returns a console logger on w at info level, or debug when verbose.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}

func readDataset(path string) (*dataset.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("no input: set --data, UNMIX_DATA or data in the config file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return ds, nil
}

// dumpMetrics writes every gathered family in the Prometheus text format.
func dumpMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}

// readLabels reads a row,regime CSV as written by simulate --labels-out.
// Rows must appear in order 0..n-1.
func readLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty labels file", path)
	}
	labels := make([]int, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 2 {
			return nil, fmt.Errorf("read %s: line %d: want 2 fields, got %d", path, i+2, len(rec))
		}
		row, err := strconv.Atoi(rec[0])
		if err != nil || row != i {
			return nil, fmt.Errorf("read %s: line %d: row %q out of order", path, i+2, rec[0])
		}
		l, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("read %s: line %d: %w", path, i+2, err)
		}
		labels = append(labels, l)
	}

	return labels, nil
}

// readGraphs reads a regime,from,to CSV as written by simulate --graphs-out.
// A row with empty endpoints declares an edgeless regime. Every endpoint must
// be one of names.
func readGraphs(path string, names []string) ([]*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("read %s: no graphs", path)
	}
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	var graphs []*graph.Graph
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) != 3 {
			return nil, fmt.Errorf("read %s: line %d: want 3 fields, got %d", path, line, len(rec))
		}
		r, err := strconv.Atoi(rec[0])
		if err != nil || r < 0 {
			return nil, fmt.Errorf("read %s: line %d: bad regime %q", path, line, rec[0])
		}
		for len(graphs) <= r {
			graphs = append(graphs, graph.New(names...))
		}
		from, to := rec[1], rec[2]
		if from == "" && to == "" {
			continue
		}
		for _, v := range [2]string{from, to} {
			if _, ok := known[v]; !ok {
				return nil, fmt.Errorf("read %s: line %d: %q: %w", path, line, v, graph.ErrNodeNotFound)
			}
		}
		if err = graphs[r].AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("read %s: line %d: %w", path, line, err)
		}
	}

	return graphs, nil
}
