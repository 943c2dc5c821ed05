// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Configuration errors. Both are raised before any data is fetched.
var (
	ErrMissingParameter = errors.New("parameter is required, but missing")
	ErrInvalidFoldScale = errors.New("fold scale type is not valid")
)

// FoldScaleType says how stored fold change values are scaled.
type FoldScaleType string

const (
	// ScaleLinear values are ratios and are log2-transformed before comparison.
	ScaleLinear FoldScaleType = "linear"
	// ScaleLogarithm values are already log2 and are compared as-is.
	ScaleLogarithm FoldScaleType = "logarithm"
)

// ParseFoldScaleType validates s against the enumerated scale types.
func ParseFoldScaleType(s string) (FoldScaleType, error) {
	switch t := FoldScaleType(s); t {
	case ScaleLinear, ScaleLogarithm:
		return t, nil
	}
	return "", fmt.Errorf("input fold scale type value [%s] is not valid (want %s or %s): %w",
		s, ScaleLinear, ScaleLogarithm, ErrInvalidFoldScale)
}

// CutoffConfig holds the thresholds applied by the classifier. P and q
// cutoffs are inclusive upper bounds; the fold change cutoff is compared on
// the log2 scale in both directions.
type CutoffConfig struct {
	PCutoff          float64       `json:"p_cutoff" yaml:"p_cutoff"`
	QCutoff          float64       `json:"q_cutoff" yaml:"q_cutoff"`
	FoldChangeCutoff float64       `json:"fold_change_cutoff" yaml:"fold_change_cutoff"`
	FoldScaleType    FoldScaleType `json:"fold_scale_type" yaml:"fold_scale_type"`

	// LegacyCarryOver lets a row with missing statistics inherit the
	// previous row's up/down decision, as older releases did.
	LegacyCarryOver bool `json:"legacy_carry_over,omitempty" yaml:"legacy_carry_over,omitempty"`
}

// NewCutoffConfig builds a CutoffConfig, rejecting unknown scale types.
func NewCutoffConfig(p, q, foldChange float64, scale string) (CutoffConfig, error) {
	t, err := ParseFoldScaleType(scale)
	if err != nil {
		return CutoffConfig{}, err
	}
	return CutoffConfig{
		PCutoff:          p,
		QCutoff:          q,
		FoldChangeCutoff: foldChange,
		FoldScaleType:    t,
	}, nil
}

// Validate checks the scale type of a CutoffConfig built by hand.
func (c CutoffConfig) Validate() error {
	_, err := ParseFoldScaleType(string(c.FoldScaleType))
	return err
}

// UploadParams are the inputs of one feature set construction run. Numeric
// cutoffs are pointers so that a missing value can be told apart from zero.
type UploadParams struct {
	DiffExpressionRef              string   `json:"diff_expression_ref" yaml:"diff_expression_ref"`
	ExpressionMatrixRef            string   `json:"expression_matrix_ref,omitempty" yaml:"expression_matrix_ref,omitempty"`
	WorkspaceName                  string   `json:"workspace_name" yaml:"workspace_name"`
	PCutoff                        *float64 `json:"p_cutoff" yaml:"p_cutoff"`
	QCutoff                        *float64 `json:"q_cutoff" yaml:"q_cutoff"`
	FoldScaleType                  string   `json:"fold_scale_type" yaml:"fold_scale_type"`
	FoldChangeCutoff               *float64 `json:"fold_change_cutoff" yaml:"fold_change_cutoff"`
	FeatureSetSuffix               string   `json:"feature_set_suffix,omitempty" yaml:"feature_set_suffix,omitempty"`
	FilteredExpressionMatrixSuffix string   `json:"filtered_expression_matrix_suffix,omitempty" yaml:"filtered_expression_matrix_suffix,omitempty"`
	LegacyCarryOver                bool     `json:"legacy_carry_over,omitempty" yaml:"legacy_carry_over,omitempty"`
}

// Validate checks required parameters in a fixed order and then the scale type.
func (p UploadParams) Validate() error {
	required := []struct {
		name    string
		present bool
	}{
		{"diff_expression_ref", p.DiffExpressionRef != ""},
		{"workspace_name", p.WorkspaceName != ""},
		{"p_cutoff", p.PCutoff != nil},
		{"q_cutoff", p.QCutoff != nil},
		{"fold_scale_type", p.FoldScaleType != ""},
		{"fold_change_cutoff", p.FoldChangeCutoff != nil},
	}
	for _, r := range required {
		if !r.present {
			return fmt.Errorf("%q %w", r.name, ErrMissingParameter)
		}
	}
	_, err := ParseFoldScaleType(p.FoldScaleType)
	return err
}

// Cutoff validates p and returns its CutoffConfig.
func (p UploadParams) Cutoff() (CutoffConfig, error) {
	if err := p.Validate(); err != nil {
		return CutoffConfig{}, err
	}
	cfg, err := NewCutoffConfig(*p.PCutoff, *p.QCutoff, *p.FoldChangeCutoff, p.FoldScaleType)
	if err != nil {
		return CutoffConfig{}, err
	}
	cfg.LegacyCarryOver = p.LegacyCarryOver
	return cfg, nil
}

// LoadUploadParams reads run parameters from a YAML or JSON file.
func LoadUploadParams(path string) (UploadParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadParams{}, fmt.Errorf("reading params file %s: %w", path, err)
	}
	var p UploadParams
	if err := yaml.Unmarshal(data, &p); err != nil {
		return UploadParams{}, fmt.Errorf("parsing params file %s: %w", path, err)
	}
	return p, nil
}

// UploadResult is the outcome of one feature set construction run.
type UploadResult struct {
	ResultDirectory             string `json:"result_directory" yaml:"result_directory"`
	UpFeatureSetRef             string `json:"up_feature_set_ref" yaml:"up_feature_set_ref"`
	DownFeatureSetRef           string `json:"down_feature_set_ref" yaml:"down_feature_set_ref"`
	FilteredExpressionMatrixRef string `json:"filtered_expression_matrix_ref,omitempty" yaml:"filtered_expression_matrix_ref,omitempty"`
	ReportName                  string `json:"report_name" yaml:"report_name"`
	ReportRef                   string `json:"report_ref" yaml:"report_ref"`
}
