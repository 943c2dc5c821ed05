// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FeatureID is a gene or matrix row identifier. Identifiers may be compound
// ("GENE123.t1"); only the part before the first '.' names the gene.
type FeatureID string

// Prefix returns the canonical gene identifier, the text before the first '.'.
// Record parsing and matrix partitioning both key on this value.
func (f FeatureID) Prefix() string {
	if i := strings.IndexByte(string(f), '.'); i >= 0 {
		return string(f[:i])
	}
	return string(f)
}

// absentValues are the textual spellings of a missing measurement.
var absentValues = map[string]bool{
	"NA":   true,
	"null": true,
	"":     true,
}

// Measurement is a numeric cell of a differential expression table kept in
// its textual form. Absent values ("NA", "null", "") are preserved as text so
// that the classifier, not the parser, decides how to treat them.
type Measurement string

// IsAbsent reports whether the measurement is one of the missing-value spellings.
func (m Measurement) IsAbsent() bool {
	return absentValues[string(m)]
}

// Float parses the measurement as a float64.
func (m Measurement) Float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(m)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing measurement %q: %w", string(m), err)
	}
	return v, nil
}

// UnmarshalJSON accepts numbers, strings, and null. Null becomes the empty
// (absent) measurement.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*m = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Measurement(s)
	default:
		*m = Measurement(raw)
	}
	return nil
}

// MarshalJSON writes the empty measurement as null, numeric values as JSON
// numbers, and any other text ("NA", "NaN") as a string.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(m), 64); err == nil && json.Valid([]byte(m)) {
		return []byte(m), nil
	}
	return json.Marshal(string(m))
}

// DifferentialExpressionRow is one flattened record of a differential
// expression matrix: the gene prefix and its three statistics.
type DifferentialExpressionRow struct {
	GeneID         string      `json:"gene_id" yaml:"gene_id" csv:"gene_id"`
	Log2FoldChange Measurement `json:"log2_fold_change" yaml:"log2_fold_change" csv:"log2_fold_change"`
	PValue         Measurement `json:"p_value" yaml:"p_value" csv:"p_value"`
	QValue         Measurement `json:"q_value" yaml:"q_value" csv:"q_value"`
}

// HasAbsent reports whether any of the row's statistics is missing.
func (r DifferentialExpressionRow) HasAbsent() bool {
	return r.Log2FoldChange.IsAbsent() || r.PValue.IsAbsent() || r.QValue.IsAbsent()
}
