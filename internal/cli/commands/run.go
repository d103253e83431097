package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/regress"
	"github.com/katalvlaran/unmix/unmix"
)

// AddUnmixFlags registers the flags shared by run and select-k.
// Defaults mirror the library defaults; only changed flags override other sources.
func AddUnmixFlags(fs *pflag.FlagSet) {
	def := unmix.DefaultConfig()
	fs.String("data", "", "Input CSV (header row of variable names)")
	fs.Int("parallelism", 1, "Goroutines for the K sweep and per-cluster searches")
	fs.Bool("metrics", false, "Print Prometheus metrics to stderr when done")
	fs.Int("k", def.K, "Number of regimes (run)")
	fs.Int("kmin", def.KMin, "Smallest K tried (select-k)")
	fs.Int("kmax", def.KMax, "Largest K tried (select-k)")
	fs.Bool("superset", def.UseParentSuperset, "Screen parent supersets; false uses a pooled Fisher-z search")
	fs.Int("top-m", def.Superset.TopM, "Candidate parents kept per variable")
	fs.String("score", "pearson", "Screening score (pearson|spearman|kendall)")
	fs.Bool("bagging", false, "Union parents found by Fisher-z on row sub-samples")
	fs.Int("bags", def.Superset.Bags, "Number of sub-samples when bagging")
	fs.Float64("bag-fraction", def.Superset.BagFraction, "Sub-sample size as a fraction of n")
	fs.Bool("robust-scale", def.RobustScaleResiduals, "Divide residual columns by MAD/0.6745")
	fs.String("cov", "diagonal", "Covariance type (full|diagonal)")
	fs.Int("em-max-iters", def.EMMaxIters, "EM iteration cap")
	fs.Float64("em-tol", def.EMTol, "Relative log-likelihood tolerance")
	fs.Float64("ridge", def.Ridge, "Covariance diagonal ridge")
	fs.Int("kmeans-restarts", def.KMeansRestarts, "k-means++ restarts for EM initialization")
	fs.Int("kmeans-max-iter", def.KMeansMaxIter, "Lloyd iterations per restart")
	fs.Float64("shrinkage", def.CovShrinkage, "Covariance shrinkage in [0,1]")
	fs.Float64("cov-ridge-rel", def.CovRidgeRel, "Ridge relative to the mean variance")
	fs.Int("anneal-steps", def.AnnealSteps, "Deterministic annealing steps (0 disables)")
	fs.Float64("anneal-start-t", def.AnnealStartT, "Initial annealing temperature in (0,1]")
	fs.Bool("per-cluster", false, "Run Fisher-z on every cluster")
	fs.Float64("alpha", 0.01, "Fisher-z significance level")
	fs.Int("depth", 1, "Fisher-z conditioning depth (0|1)")
	fs.String("truth", "", "Regime labels CSV (row,regime) to score the partition against")
	fs.String("truth-graphs", "", "True graphs CSV (regime,from,to) to match per-cluster graphs against")
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fit a K-regime mixture and partition the rows",
		Long: `Run builds residual signatures for every variable, fits a Gaussian
mixture with K components by EM and reports the MAP partition.`,
		Example: `  unmix run --data data.csv --k 2
  unmix run --data data.csv --k 3 --cov full --per-cluster -o json
  unmix run --data data.csv --k 2 --per-cluster --truth truth.csv --truth-graphs graphs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnmix(cmd, false)
		},
	}
	AddUnmixFlags(cmd.Flags())

	return cmd
}

// NewSelectKCommand creates the select-k command.
func NewSelectKCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-k",
		Short: "Choose K by BIC over [kmin, kmax]",
		Example: `  unmix select-k --data data.csv --kmin 1 --kmax 4 --parallelism 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnmix(cmd, true)
		},
	}
	AddUnmixFlags(cmd.Flags())

	return cmd
}

func runUnmix(cmd *cobra.Command, sweep bool) error {
	env, err := GetEnv(cmd.Context())
	if err != nil {
		return err
	}
	cfg := env.Config
	ucfg, err := cfg.UnmixConfig()
	if err != nil {
		return err
	}
	ds, err := readDataset(cfg.Data)
	if err != nil {
		return err
	}
	var truthGraphs []*graph.Graph
	if cfg.TruthGraphs != "" {
		if !cfg.PerCluster {
			return fmt.Errorf("--truth-graphs needs --per-cluster")
		}
		if truthGraphs, err = readGraphs(cfg.TruthGraphs, ds.Names()); err != nil {
			return err
		}
	}

	fz := cfg.FisherZ()
	metrics := unmix.NewMetrics(env.Registry)
	opts := []unmix.Option{
		unmix.WithLogger(env.Logger),
		unmix.WithMetrics(metrics),
		unmix.WithParallelism(cfg.Parallelism),
	}
	if !ucfg.UseParentSuperset {
		opts = append(opts, unmix.WithPooledSearch(fz))
	}
	if ucfg.Superset.UseBagging {
		opts = append(opts, unmix.WithShallowSearch(fz))
	}
	if cfg.PerCluster {
		opts = append(opts, unmix.WithPerClusterSearch(fz))
	}

	env.Logger.Info().
		Int("rows", ds.Rows()).
		Int("vars", ds.Cols()).
		Str("data", cfg.Data).
		Msg("dataset loaded")

	var res *unmix.Result
	if sweep {
		res, err = unmix.SelectK(ds, ucfg.KMin, ucfg.KMax, regress.NewLinearQR(), ucfg, opts...)
	} else {
		res, err = unmix.Run(ds, ucfg, regress.NewLinearQR(), opts...)
	}
	if err != nil {
		return err
	}

	var scores truthScores
	if cfg.Truth != "" {
		truth, terr := readLabels(cfg.Truth)
		if terr != nil {
			return terr
		}
		v, terr := unmix.AdjustedRandIndex(truth, res.Labels)
		if terr != nil {
			return fmt.Errorf("score against %s: %w", cfg.Truth, terr)
		}
		scores.ARI = &v
		env.Logger.Info().Float64("ari", v).Str("truth", cfg.Truth).Msg("partition scored")
	}
	if truthGraphs != nil {
		if scores.Matches, err = matchGraphs(truthGraphs, res.Graphs); err != nil {
			return fmt.Errorf("match against %s: %w", cfg.TruthGraphs, err)
		}
		for _, m := range scores.Matches {
			env.Logger.Info().
				Int("cluster", m.Cluster).
				Int("regime", m.Regime).
				Float64("adjacency_f1", m.AdjacencyF1).
				Float64("arrow_f1", m.ArrowF1).
				Int("shd", m.SHD).
				Msg("graph matched")
		}
	}

	if err = render(cmd.OutOrStdout(), cfg.Output, res, scores); err != nil {
		return err
	}
	if cfg.Metrics {
		return dumpMetrics(cmd.ErrOrStderr(), env.Registry)
	}

	return nil
}
