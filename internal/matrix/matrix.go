// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matrix restricts expression matrices to a set of retained features.
package matrix

import (
	"encoding/json"
	"fmt"
	"regexp"

	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// expressionMatrixPattern matches "expression matrix" spellings such as
// "ExpressionMatrix", "_expression_matrix", or "EXPRESSION__MATRIX".
var expressionMatrixPattern = regexp.MustCompile(`(?i)_*expression_*matrix`)

// FilteredName derives the display name of a filtered matrix. When name
// contains an "expression matrix" spelling, each occurrence is replaced by
// suffix; otherwise suffix is appended.
func FilteredName(name, suffix string) string {
	if expressionMatrixPattern.MatchString(name) {
		return expressionMatrixPattern.ReplaceAllLiteralString(name, suffix)
	}
	return name + suffix
}

// Filter returns the rows of m whose row id prefix is in keep, in their
// original order. Column ids are carried over and m is not modified.
func Filter(m types.ValueMatrix, keep map[string]struct{}) (types.ValueMatrix, error) {
	if len(m.RowIDs) != len(m.Values) {
		return types.ValueMatrix{}, fmt.Errorf("matrix has %d row ids but %d value rows", len(m.RowIDs), len(m.Values))
	}

	out := types.ValueMatrix{
		RowIDs: []string{},
		ColIDs: append([]string(nil), m.ColIDs...),
		Values: [][]null.Float{},
	}
	for i, id := range m.RowIDs {
		if _, ok := keep[types.FeatureID(id).Prefix()]; !ok {
			continue
		}
		out.RowIDs = append(out.RowIDs, id)
		out.Values = append(out.Values, append([]null.Float(nil), m.Values[i]...))
	}
	return out, nil
}

// FilterDocument filters the data block of a stored expression matrix
// payload. Only data.row_ids and data.values are rewritten; every other field,
// at the top level and inside data, is carried over unchanged. It returns
// the new payload and the number of rows kept.
func FilterDocument(raw json.RawMessage, keep map[string]struct{}) (json.RawMessage, int, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("decoding expression matrix: %w", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(doc["data"], &data); err != nil || data == nil {
		return nil, 0, fmt.Errorf("expression matrix has no data block")
	}

	var m types.ValueMatrix
	if err := json.Unmarshal(data["row_ids"], &m.RowIDs); err != nil {
		return nil, 0, fmt.Errorf("decoding data.row_ids: %w", err)
	}
	if err := json.Unmarshal(data["values"], &m.Values); err != nil {
		return nil, 0, fmt.Errorf("decoding data.values: %w", err)
	}

	filtered, err := Filter(m, keep)
	if err != nil {
		return nil, 0, err
	}

	if data["row_ids"], err = json.Marshal(filtered.RowIDs); err != nil {
		return nil, 0, err
	}
	if data["values"], err = json.Marshal(filtered.Values); err != nil {
		return nil, 0, err
	}
	if doc["data"], err = json.Marshal(data); err != nil {
		return nil, 0, err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, err
	}
	return out, len(filtered.RowIDs), nil
}
