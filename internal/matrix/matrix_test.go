package matrix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

func keepSet(ids ...string) map[string]struct{} {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	return keep
}

func sampleMatrix() types.ValueMatrix {
	return types.ValueMatrix{
		RowIDs: []string{"G1.1", "G2.1", "G1.2", "G3", "G4.t1"},
		ColIDs: []string{"s1", "s2"},
		Values: [][]null.Float{
			{null.FloatFrom(1), null.FloatFrom(2)},
			{null.FloatFrom(3), null.FloatFrom(4)},
			{null.FloatFrom(5), null.NewFloat(0, false)},
			{null.FloatFrom(7), null.FloatFrom(8)},
			{null.FloatFrom(9), null.FloatFrom(10)},
		},
	}
}

func TestFilterKeepsOrderAndAlignment(t *testing.T) {
	m := sampleMatrix()

	got, err := Filter(m, keepSet("G1", "G4"))
	require.NoError(t, err)

	assert.Equal(t, []string{"G1.1", "G1.2", "G4.t1"}, got.RowIDs)
	assert.Equal(t, []string{"s1", "s2"}, got.ColIDs)
	require.Len(t, got.Values, len(got.RowIDs))

	// Each output row carries exactly the values of its source row.
	source := map[string][]null.Float{}
	for i, id := range m.RowIDs {
		source[id] = m.Values[i]
	}
	for k, id := range got.RowIDs {
		assert.Equal(t, source[id], got.Values[k], id)
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	m := sampleMatrix()
	got, err := Filter(m, keepSet("G2"))
	require.NoError(t, err)

	got.Values[0][0] = null.FloatFrom(99)
	got.ColIDs[0] = "changed"

	assert.Equal(t, 3.0, m.Values[1][0].Float64)
	assert.Equal(t, "s1", m.ColIDs[0])
	assert.Len(t, m.RowIDs, 5)
}

func TestFilterEmptyKeep(t *testing.T) {
	got, err := Filter(sampleMatrix(), keepSet())
	require.NoError(t, err)
	assert.Empty(t, got.RowIDs)
	assert.Empty(t, got.Values)
	assert.NotNil(t, got.RowIDs)
}

func TestFilterMisaligned(t *testing.T) {
	m := sampleMatrix()
	m.Values = m.Values[:2]
	_, err := Filter(m, keepSet("G1"))
	assert.Error(t, err)
}

func TestFilterDocumentKeepsUnknownFields(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "level",
		"scale": "log2",
		"genome_ref": "1/2/3",
		"condition_mapping": {"s1": "heat", "s2": "control"},
		"feature_mapping": {"G1.1": "AT1G01010"},
		"data": {
			"row_ids": ["G1.1", "G2.1", "G3"],
			"col_ids": ["s1", "s2"],
			"values": [[1, 2], [3, null], [5, 6]],
			"extra": {"note": "kept"}
		}
	}`)

	out, n, err := FilterDocument(raw, keepSet("G2", "G3"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.JSONEq(t, `{
		"type": "level",
		"scale": "log2",
		"genome_ref": "1/2/3",
		"condition_mapping": {"s1": "heat", "s2": "control"},
		"feature_mapping": {"G1.1": "AT1G01010"},
		"data": {
			"row_ids": ["G2.1", "G3"],
			"col_ids": ["s1", "s2"],
			"values": [[3, null], [5, 6]],
			"extra": {"note": "kept"}
		}
	}`, string(out))
}

func TestFilterDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[1, 2]`},
		{"no data block", `{"type": "level"}`},
		{"misaligned", `{"data": {"row_ids": ["G1", "G2"], "values": [[1]]}}`},
		{"bad values", `{"data": {"row_ids": ["G1"], "values": "x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FilterDocument(json.RawMessage(tt.raw), keepSet("G1"))
			assert.Error(t, err)
		})
	}
}

func TestFilteredName(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"leaf_expression_matrix", "_filtered", "leaf_filtered"},
		{"leafExpressionMatrix", "_filtered", "leaf_filtered"},
		{"leaf__EXPRESSION__MATRIX_v2", "_filtered", "leaf_filtered_v2"},
		{"expressionmatrix", "_filtered", "_filtered"},
		{"leaf_counts", "_filtered", "leaf_counts_filtered"},
		{"expression_data", "_filtered", "expression_data_filtered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilteredName(tt.name, tt.suffix))
		})
	}
}
