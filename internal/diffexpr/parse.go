// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diffexpr flattens differential expression matrices into a single
// gene table of (gene_id, log2_fold_change, p_value, q_value) rows.
package diffexpr

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// ErrEmptySet is returned when a differential expression set has no items.
var ErrEmptySet = errors.New("differential expression set has no items")

// Fetcher retrieves workspace objects by reference.
type Fetcher interface {
	GetObject(ctx context.Context, ref string) (types.Object, error)
}

// Table is the flattened result of parsing a differential expression set.
type Table struct {
	Rows []types.DifferentialExpressionRow

	// GenomeRef is the genome of the last matrix parsed. All matrices of a
	// set are assumed to share one genome.
	GenomeRef string
}

// ParseSet fetches the set at setRef and parses every matrix it lists.
func ParseSet(ctx context.Context, f Fetcher, setRef string) (Table, error) {
	obj, err := f.GetObject(ctx, setRef)
	if err != nil {
		return Table{}, fmt.Errorf("fetching differential expression set %s: %w", setRef, err)
	}
	var set types.DifferentialExpressionMatrixSet
	if err := obj.Decode(&set); err != nil {
		return Table{}, err
	}
	if len(set.Items) == 0 {
		return Table{}, fmt.Errorf("%s: %w", setRef, ErrEmptySet)
	}
	return Parse(ctx, f, set.Items)
}

// Parse fetches each item in order and appends its rows to one table. Row
// order follows item order, then row order within each matrix. Nothing is
// deduplicated. Any fetch failure aborts the parse.
func Parse(ctx context.Context, f Fetcher, items []types.SetItem) (Table, error) {
	var table Table
	for _, item := range items {
		obj, err := f.GetObject(ctx, item.Ref)
		if err != nil {
			return Table{}, fmt.Errorf("fetching differential expression matrix %s: %w", item.Ref, err)
		}
		var m types.DifferentialExpressionMatrix
		if err := obj.Decode(&m); err != nil {
			return Table{}, err
		}
		rows, err := flatten(m.Data)
		if err != nil {
			return Table{}, fmt.Errorf("matrix %s: %w", item.Ref, err)
		}
		table.Rows = append(table.Rows, rows...)
		table.GenomeRef = m.GenomeRef
	}
	return table, nil
}

func flatten(m types.MeasurementMatrix) ([]types.DifferentialExpressionRow, error) {
	if len(m.RowIDs) != len(m.Values) {
		return nil, fmt.Errorf("%d row ids but %d value rows", len(m.RowIDs), len(m.Values))
	}
	rows := make([]types.DifferentialExpressionRow, 0, len(m.RowIDs))
	for i, id := range m.RowIDs {
		v := m.Values[i]
		if len(v) < 3 {
			return nil, fmt.Errorf("row %q has %d values, want log2_fold_change, p_value, q_value", id, len(v))
		}
		rows = append(rows, types.DifferentialExpressionRow{
			GeneID:         types.FeatureID(id).Prefix(),
			Log2FoldChange: v[0],
			PValue:         v[1],
			QValue:         v[2],
		})
	}
	return rows, nil
}
