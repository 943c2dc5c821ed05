// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureIDPrefix(t *testing.T) {
	tests := []struct {
		id   FeatureID
		want string
	}{
		{"GENE123.t1", "GENE123"},
		{"GENE123.t2", "GENE123"},
		{"GENE123", "GENE123"},
		{"AT1G01010.1.2", "AT1G01010"},
		{".hidden", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.Prefix())
			// Applying the rule twice changes nothing.
			assert.Equal(t, tt.want, FeatureID(tt.id.Prefix()).Prefix())
		})
	}
}

func TestMeasurementIsAbsent(t *testing.T) {
	for _, m := range []Measurement{"NA", "null", ""} {
		assert.True(t, m.IsAbsent(), "%q should be absent", m)
	}
	for _, m := range []Measurement{"0", "na", "NaN", "1.5"} {
		assert.False(t, m.IsAbsent(), "%q should be present", m)
	}
}

func TestMeasurementFloat(t *testing.T) {
	v, err := Measurement(" -2.5 ").Float()
	require.NoError(t, err)
	assert.Equal(t, -2.5, v)

	_, err = Measurement("abc").Float()
	assert.Error(t, err)
}

func TestMeasurementJSON(t *testing.T) {
	var row []Measurement
	require.NoError(t, json.Unmarshal([]byte(`[1.5e-3, null, "NA", -2]`), &row))
	assert.Equal(t, []Measurement{"1.5e-3", "", "NA", "-2"}, row)

	out, err := json.Marshal([]Measurement{"0.25", "", "NA", "NaN"})
	require.NoError(t, err)
	assert.JSONEq(t, `[0.25, null, "NA", "NaN"]`, string(out))
}

func TestDifferentialExpressionRowHasAbsent(t *testing.T) {
	row := DifferentialExpressionRow{GeneID: "G1", Log2FoldChange: "2", PValue: "0.01", QValue: "0.01"}
	assert.False(t, row.HasAbsent())

	row.QValue = "null"
	assert.True(t, row.HasAbsent())
}

func TestObjectInfoRef(t *testing.T) {
	info := ObjectInfo{WorkspaceID: 12, ObjectID: 7, Version: 3}
	assert.Equal(t, "12/7/3", info.Ref())
}
