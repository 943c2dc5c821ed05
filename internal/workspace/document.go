// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// payloadShapes maps known object types to the struct their payload must
// decode into.
var payloadShapes = map[string]func() any{
	types.TypeDiffExprMatrixSet: func() any { return &types.DifferentialExpressionMatrixSet{} },
	types.TypeDiffExprMatrix:    func() any { return &types.DifferentialExpressionMatrix{} },
	types.TypeExpressionMatrix:  func() any { return &types.ExpressionMatrix{} },
	types.TypeFeatureSet:        func() any { return &types.FeatureSet{} },
	types.TypeGenome:            func() any { return &types.Genome{} },
	types.TypeReport:            func() any { return &types.Report{} },
}

// DecodeDocument converts a YAML or JSON document to JSON. When objType is a
// known type the payload must also decode into that type's struct.
func DecodeDocument(data []byte, objType string) (json.RawMessage, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting document to JSON: %w", err)
	}

	if shape, ok := payloadShapes[objType]; ok {
		if err := json.Unmarshal(raw, shape()); err != nil {
			return nil, fmt.Errorf("document is not a valid %s: %w", objType, err)
		}
	}
	return raw, nil
}

// ImportFile reads a YAML or JSON file and saves it as an object of objType.
func (s *Store) ImportFile(ctx context.Context, workspace, objType, name, path string) (types.ObjectInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ObjectInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}
	raw, err := DecodeDocument(data, objType)
	if err != nil {
		return types.ObjectInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	wsID, err := s.WorkspaceID(ctx, workspace)
	if err != nil {
		return types.ObjectInfo{}, err
	}
	return s.SaveObject(ctx, wsID, objType, name, raw)
}
