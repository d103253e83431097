// SPDX-License-Identifier: MIT

package superset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates an unusable screening or bagging configuration.
	ErrInvalidConfig = errors.New("superset: invalid config")

	// ErrEmptyDataset indicates a nil dataset or one without rows or columns.
	ErrEmptyDataset = errors.New("superset: empty dataset")

	// ErrUnknownScoreType indicates a score type name that cannot be parsed.
	ErrUnknownScoreType = errors.New("superset: unknown score type")
)

// ScoreType selects the association measure used for screening.
type ScoreType int

const (
	// Pearson is linear correlation on raw values.
	Pearson ScoreType = iota
	// Spearman is Pearson correlation on average ranks.
	Spearman
	// Kendall is tau-a, O(n²) per pair.
	Kendall
)

// String implements fmt.Stringer.
func (s ScoreType) String() string {
	switch s {
	case Pearson:
		return "PEARSON"
	case Spearman:
		return "SPEARMAN"
	case Kendall:
		return "KENDALL"
	default:
		return fmt.Sprintf("ScoreType(%d)", int(s))
	}
}

// ParseScoreType maps a case-insensitive name to a ScoreType.
func ParseScoreType(s string) (ScoreType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PEARSON":
		return Pearson, nil
	case "SPEARMAN":
		return Spearman, nil
	case "KENDALL":
		return Kendall, nil
	default:
		return Pearson, fmt.Errorf("%w: %q", ErrUnknownScoreType, s)
	}
}

// Default screening parameters.
const (
	DefaultTopM        = 10
	DefaultBags        = 10
	DefaultBagFraction = 0.7
)

// Config controls parent screening and optional bagging.
type Config struct {
	// TopM is the number of screened candidates kept per target; at least 1.
	TopM int
	// ScoreType is the association measure.
	ScoreType ScoreType
	// UseBagging unions parents found by a shallow search on row sub-samples.
	UseBagging bool
	// Bags is the number of sub-samples.
	Bags int
	// BagFraction is the sub-sample size as a fraction of n, in (0,1].
	BagFraction float64
	// Seed drives sub-sample selection; bag b uses rng.DeriveSeed(Seed, b).
	Seed int64
}

// DefaultConfig returns TopM=10, Pearson scores and bagging disabled.
func DefaultConfig() Config {
	return Config{
		TopM:        DefaultTopM,
		ScoreType:   Pearson,
		Bags:        DefaultBags,
		BagFraction: DefaultBagFraction,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.TopM < 1 {
		return fmt.Errorf("%w: TopM %d < 1", ErrInvalidConfig, c.TopM)
	}
	if c.ScoreType < Pearson || c.ScoreType > Kendall {
		return fmt.Errorf("%w: %v", ErrUnknownScoreType, c.ScoreType)
	}
	if c.UseBagging {
		if c.Bags < 1 {
			return fmt.Errorf("%w: Bags %d < 1", ErrInvalidConfig, c.Bags)
		}
		if !(c.BagFraction > 0 && c.BagFraction <= 1) {
			return fmt.Errorf("%w: BagFraction %g not in (0,1]", ErrInvalidConfig, c.BagFraction)
		}
	}

	return nil
}
