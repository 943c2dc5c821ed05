// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify splits differential expression rows into up- and
// down-regulated gene sets using p-value, q-value, and fold change cutoffs.
package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// ErrNonPositiveFoldChange is the domain error for a linear-scale fold change
// that cannot be log-transformed.
var ErrNonPositiveFoldChange = errors.New("fold change must be > 0 for linear scale")

// Result holds the genes that passed the cutoffs, in first-seen order.
type Result struct {
	Up   []string
	Down []string

	// UpFoldChanges and DownFoldChanges hold the effective log2 fold change
	// of every row that contributed a membership.
	UpFoldChanges   []float64
	DownFoldChanges []float64
}

// Retained returns the union of Up and Down.
func (r Result) Retained() map[string]struct{} {
	keep := make(map[string]struct{}, len(r.Up)+len(r.Down))
	for _, id := range r.Up {
		keep[id] = struct{}{}
	}
	for _, id := range r.Down {
		keep[id] = struct{}{}
	}
	return keep
}

// EffectiveFoldChange converts a stored fold change to log2 scale. Linear
// values must be strictly positive.
func EffectiveFoldChange(v float64, scale types.FoldScaleType) (float64, error) {
	switch scale {
	case types.ScaleLinear:
		if v <= 0 {
			return 0, fmt.Errorf("invalid fold change value [%v] for linear scale: %w", v, ErrNonPositiveFoldChange)
		}
		return math.Log2(v), nil
	case types.ScaleLogarithm:
		return v, nil
	}
	return 0, fmt.Errorf("input fold scale type value [%s] is not valid: %w", scale, types.ErrInvalidFoldScale)
}

// Classify applies cfg to rows in order. A row is up when p and q are within
// their cutoffs and the effective fold change is >= the fold change cutoff;
// it is down under the same p and q conditions when the effective fold change
// is <= -cutoff. Rows with a missing statistic are never classified, unless
// cfg.LegacyCarryOver is set, in which case they repeat the previous row's
// decision.
//
// A gene keeps the polarity of the first row that classified it; later rows
// with the same gene and the opposite polarity are ignored. Any error aborts
// the whole classification and no partial result is returned.
func Classify(rows []types.DifferentialExpressionRow, cfg types.CutoffConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	var (
		res      Result
		polarity = make(map[string]bool) // gene -> true for up, false for down
		up, down bool
		fc       float64
	)

	for i, row := range rows {
		if !cfg.LegacyCarryOver {
			up, down = false, false
		}

		if !row.HasAbsent() {
			var err error
			up, down, fc, err = evaluate(row, cfg)
			if err != nil {
				return Result{}, fmt.Errorf("row %d (%s): %w", i+1, row.GeneID, err)
			}
		}

		switch {
		case up:
			if isUp, seen := polarity[row.GeneID]; seen {
				if isUp {
					res.UpFoldChanges = append(res.UpFoldChanges, fc)
				}
				continue
			}
			polarity[row.GeneID] = true
			res.Up = append(res.Up, row.GeneID)
			res.UpFoldChanges = append(res.UpFoldChanges, fc)
		case down:
			if isUp, seen := polarity[row.GeneID]; seen {
				if !isUp {
					res.DownFoldChanges = append(res.DownFoldChanges, fc)
				}
				continue
			}
			polarity[row.GeneID] = false
			res.Down = append(res.Down, row.GeneID)
			res.DownFoldChanges = append(res.DownFoldChanges, fc)
		}
	}

	if res.Up == nil {
		res.Up = []string{}
	}
	if res.Down == nil {
		res.Down = []string{}
	}
	return res, nil
}

// evaluate computes the up and down predicates for a row with all statistics present.
func evaluate(row types.DifferentialExpressionRow, cfg types.CutoffConfig) (up, down bool, fc float64, err error) {
	p, err := row.PValue.Float()
	if err != nil {
		return false, false, 0, fmt.Errorf("p_value: %w", err)
	}
	q, err := row.QValue.Float()
	if err != nil {
		return false, false, 0, fmt.Errorf("q_value: %w", err)
	}
	raw, err := row.Log2FoldChange.Float()
	if err != nil {
		return false, false, 0, fmt.Errorf("log2_fold_change: %w", err)
	}
	fc, err = EffectiveFoldChange(raw, cfg.FoldScaleType)
	if err != nil {
		return false, false, 0, err
	}

	significant := p <= cfg.PCutoff && q <= cfg.QCutoff
	up = significant && fc >= cfg.FoldChangeCutoff
	down = significant && fc <= -cfg.FoldChangeCutoff
	return up, down, fc, nil
}
