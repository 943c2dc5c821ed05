// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.WorkspaceConfig{Dir: filepath.Join(t.TempDir(), "ws")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createWorkspace(t *testing.T, store *Store, name string) int64 {
	t.Helper()
	info, err := store.CreateWorkspace(context.Background(), name)
	require.NoError(t, err)
	return info.ID
}

// --- schema ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"workspaces", "objects", "object_versions"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ws")
	store, err := NewStore(types.WorkspaceConfig{Dir: dir})
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
}

// --- workspaces ---

func TestCreateWorkspaceIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.CreateWorkspace(ctx, "rnaseq")
	require.NoError(t, err)
	second, err := store.CreateWorkspace(ctx, "rnaseq")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := store.CreateWorkspace(ctx, "proteomics")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateWorkspaceRejectsNumericName(t *testing.T) {
	store := testStore(t)
	_, err := store.CreateWorkspace(context.Background(), "42")
	assert.Error(t, err)
}

func TestWorkspaceID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	id := createWorkspace(t, store, "rnaseq")

	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{"by name", "rnaseq", id, nil},
		{"by numeric id", "1", id, nil},
		{"unknown name", "nope", 0, ErrNotFound},
		{"unknown id", "99", 0, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.WorkspaceID(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- objects ---

func TestSaveObjectVersions(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	wsID := createWorkspace(t, store, "rnaseq")

	v1, err := store.SaveObject(ctx, wsID, types.TypeFeatureSet, "up_set", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1.ObjectID)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, "rnaseq", v1.WorkspaceName)
	assert.Equal(t, "1/1/1", v1.Ref())

	v2, err := store.SaveObject(ctx, wsID, types.TypeFeatureSet, "up_set", map[string]int{"n": 2})
	require.NoError(t, err)
	assert.Equal(t, v1.ObjectID, v2.ObjectID)
	assert.Equal(t, 2, v2.Version)

	other, err := store.SaveObject(ctx, wsID, types.TypeFeatureSet, "down_set", map[string]int{"n": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.ObjectID)
	assert.Equal(t, 1, other.Version)
}

func TestSaveObjectUnknownWorkspace(t *testing.T) {
	store := testStore(t)
	_, err := store.SaveObject(context.Background(), 7, types.TypeFeatureSet, "x", struct{}{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveObjectRejectsNumericName(t *testing.T) {
	store := testStore(t)
	wsID := createWorkspace(t, store, "rnaseq")
	_, err := store.SaveObject(context.Background(), wsID, types.TypeFeatureSet, "12", struct{}{})
	assert.Error(t, err)
}

func TestGetObject(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	wsID := createWorkspace(t, store, "rnaseq")

	_, err := store.SaveObject(ctx, wsID, types.TypeFeatureSet, "up_set", map[string]int{"n": 1})
	require.NoError(t, err)
	_, err = store.SaveObject(ctx, wsID, types.TypeFeatureSet, "up_set", map[string]int{"n": 2})
	require.NoError(t, err)

	tests := []struct {
		name        string
		ref         string
		wantVersion int
		wantN       int
		wantErr     error
	}{
		{"absolute ref", "1/1/1", 1, 1, nil},
		{"latest by id", "1/1", 2, 2, nil},
		{"latest by names", "rnaseq/up_set", 2, 2, nil},
		{"version by names", "rnaseq/up_set/1", 1, 1, nil},
		{"missing version", "1/1/3", 0, 0, ErrNotFound},
		{"missing object", "rnaseq/down_set", 0, 0, ErrNotFound},
		{"missing workspace", "other/up_set", 0, 0, ErrNotFound},
		{"malformed", "up_set", 0, 0, ErrInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := store.GetObject(ctx, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, obj.Info.Version)
			assert.Equal(t, "up_set", obj.Info.Name)
			assert.Equal(t, types.TypeFeatureSet, obj.Info.Type)

			var payload map[string]int
			require.NoError(t, obj.Decode(&payload))
			assert.Equal(t, tt.wantN, payload["n"])
		})
	}
}

func TestGetObjectInfo(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	wsID := createWorkspace(t, store, "rnaseq")

	saved, err := store.SaveObject(ctx, wsID, types.TypeGenome, "Athaliana", types.Genome{ScientificName: "Arabidopsis thaliana"})
	require.NoError(t, err)

	info, err := store.GetObjectInfo(ctx, saved.Ref())
	require.NoError(t, err)
	assert.Equal(t, saved.Ref(), info.Ref())
	assert.Equal(t, "Athaliana", info.Name)
	assert.Equal(t, saved.Size, info.Size)
	assert.True(t, saved.SaveDate.Equal(info.SaveDate))
}

func TestListObjects(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	wsID := createWorkspace(t, store, "rnaseq")

	for _, name := range []string{"b", "a", "b"} {
		_, err := store.SaveObject(ctx, wsID, types.TypeFeatureSet, name, []string{name})
		require.NoError(t, err)
	}

	infos, err := store.ListObjects(ctx, "rnaseq")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "b", infos[0].Name)
	assert.Equal(t, 2, infos[0].Version)
	assert.Equal(t, "a", infos[1].Name)
	assert.Equal(t, 1, infos[1].Version)

	_, err = store.ListObjects(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- documents ---

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		objType string
		want    string
		wantErr bool
	}{
		{
			name:    "yaml set",
			doc:     "items:\n  - ref: rnaseq/de1\n    label: a vs b\n",
			objType: types.TypeDiffExprMatrixSet,
			want:    `{"items":[{"ref":"rnaseq/de1","label":"a vs b"}]}`,
		},
		{
			name:    "json matrix with nulls",
			doc:     `{"genome_ref": "1/1/1", "data": {"row_ids": ["G1.1"], "values": [[2.0, null, "NA"]]}}`,
			objType: types.TypeDiffExprMatrix,
			want:    `{"genome_ref":"1/1/1","data":{"row_ids":["G1.1"],"values":[[2,null,"NA"]]}}`,
		},
		{
			name:    "unknown type passes through",
			doc:     "anything: [1, 2]\n",
			objType: "Custom.Type",
			want:    `{"anything":[1,2]}`,
		},
		{
			name:    "wrong shape for known type",
			doc:     "items: not-a-list\n",
			objType: types.TypeDiffExprMatrixSet,
			wantErr: true,
		},
		{
			name:    "empty document",
			doc:     "",
			objType: types.TypeFeatureSet,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeDocument([]byte(tt.doc), tt.objType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestImportFile(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	createWorkspace(t, store, "rnaseq")

	path := filepath.Join(t.TempDir(), "matrix.yaml")
	doc := `type: level
scale: log2
data:
  row_ids: [G1.1, G2.1]
  col_ids: [s1, s2]
  values:
    - [1.5, 2.5]
    - [null, 0.5]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	info, err := store.ImportFile(ctx, "rnaseq", types.TypeExpressionMatrix, "expression_matrix", path)
	require.NoError(t, err)

	obj, err := store.GetObject(ctx, info.Ref())
	require.NoError(t, err)

	var m types.ExpressionMatrix
	require.NoError(t, obj.Decode(&m))
	assert.Equal(t, []string{"G1.1", "G2.1"}, m.Data.RowIDs)
	require.Len(t, m.Data.Values, 2)
	assert.False(t, m.Data.Values[1][0].Valid)
	assert.Equal(t, 0.5, m.Data.Values[1][1].Float64)

	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(obj.Data, &generic))
	assert.Contains(t, generic, "scale")
}
