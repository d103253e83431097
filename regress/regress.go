// SPDX-License-Identifier: MIT

// Package regress fits target ~ f(parents) regressions whose residuals become
// the per-variable signatures clustered by the unmixing engine.
package regress

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unmix/dataset"
)

var (
	// ErrUnknownVariable indicates a target or parent name absent from the dataset.
	ErrUnknownVariable = errors.New("regress: unknown variable")

	// ErrNotFitted indicates Predict was called before a successful Fit.
	ErrNotFitted = errors.New("regress: predict before fit")

	// ErrParentCount indicates Predict received a parent list whose length differs from the fitted one.
	ErrParentCount = errors.New("regress: parent count differs from fit")

	// ErrEmptyDataset indicates a nil or zero-row dataset.
	ErrEmptyDataset = errors.New("regress: empty dataset")

	// ErrSolveFailed indicates that both the QR path and the ridge fallback failed.
	ErrSolveFailed = errors.New("regress: solve failed")
)

// Regressor fits and evaluates a regression of one variable on others.
type Regressor interface {
	Fit(ds *dataset.Dataset, target string, parents []string) error
	Predict(ds *dataset.Dataset, target string, parents []string) ([]float64, error)
}

// Residualizer is implemented by regressors that compute residuals themselves
// (robust fits, for example). Residuals uses it when present.
type Residualizer interface {
	Residuals(ds *dataset.Dataset, target string, parents []string) ([]float64, error)
}

// Residuals returns y − Predict(ds, target, parents) for a fitted r.
func Residuals(r Regressor, ds *dataset.Dataset, target string, parents []string) ([]float64, error) {
	if rr, ok := r.(Residualizer); ok {
		return rr.Residuals(ds, target, parents)
	}
	y, err := ds.Column(target)
	if err != nil {
		return nil, fmt.Errorf("Residuals(%s): %w", target, ErrUnknownVariable)
	}
	yhat, err := r.Predict(ds, target, parents)
	if err != nil {
		return nil, err
	}
	for i := range y {
		y[i] -= yhat[i]
	}

	return y, nil
}
