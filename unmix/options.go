// SPDX-License-Identifier: MIT

package unmix

import (
	"github.com/rs/zerolog"

	"github.com/katalvlaran/unmix/search"
)

// Option customizes Run and SelectK.
type Option func(*options)

type options struct {
	pooled      search.GraphSearch
	perCluster  search.GraphSearch
	shallow     search.GraphSearch
	logger      zerolog.Logger
	metrics     *Metrics
	parallelism int
}

func newOptions(opts []Option) *options {
	o := &options{logger: zerolog.Nop(), parallelism: 1}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithPooledSearch supplies the search whose parent sets drive residuals
// when Config.UseParentSuperset is false.
func WithPooledSearch(s search.GraphSearch) Option {
	return func(o *options) { o.pooled = s }
}

// WithPerClusterSearch runs s on every non-empty partition after labeling.
func WithPerClusterSearch(s search.GraphSearch) Option {
	return func(o *options) { o.perCluster = s }
}

// WithShallowSearch supplies the search run on bootstrap sub-samples when
// Config.Superset.UseBagging is set.
func WithShallowSearch(s search.GraphSearch) Option {
	return func(o *options) { o.shallow = s }
}

// WithLogger routes stage-level events to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records fits into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithParallelism bounds the goroutines used by the SelectK sweep and by
// per-cluster searches. n <= 1 keeps everything sequential.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallelism = n
	}
}
