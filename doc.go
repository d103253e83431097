// Package unmix is a residual-signature EM engine for separating data drawn
// from several causal regimes.
//
// 🚀 What is unmix?
//
//	Given an n×p table whose rows come from K different linear structural
//	models, unmix regresses every variable on candidate parents, clusters
//	the residual signatures with a Gaussian mixture, and splits the rows
//	into K per-regime datasets ready for structure search.
//
// Under the hood, everything is organized in focused subpackages:
//
//	matrix/    row-major Dense, statistics, gonum-backed QR/Cholesky/eigen bridges
//	dataset/   immutable named-column tables, row subsets, CSV I/O
//	graph/     thread-safe directed graph, topological sort, graph comparison
//	search/    GraphSearch capability + Fisher-z skeleton search
//	regress/   Regressor capability + QR least squares with ridge fallback
//	superset/  correlation screening of parent supersets, optional bagging
//	residual/  residual matrix construction and robust (MAD) scaling
//	kmeans/    k-means++ with Lloyd iterations and restarts
//	gmm/       Gaussian mixture EM (full or diagonal covariance), BIC
//	unmix/     Run / SelectK orchestration, diagnostics, metrics
//	simulate/  mixtures of linear SEMs with ground truth
//	cmd/unmix  CLI: run, select-k, simulate, version
//
// Data flow:
//
//	dataset → parents → residuals → robust scaling → k-means init → EM
//	        → MAP labels → partitions → per-cluster search
//
// Every random choice derives from an explicit seed (internal/rng), so the
// same inputs always give the same partition.
//
//	go get github.com/katalvlaran/unmix
package unmix
