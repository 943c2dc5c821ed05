// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for featureset-utils:
// workspace object payloads (differential expression sets, expression
// matrices, feature sets, reports), object metadata, run parameters, and
// configuration.
package types

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v3"
)

// Workspace object type tags.
const (
	TypeDiffExprMatrixSet = "KBaseFeatureValues.DifferentialExpressionMatrixSet"
	TypeDiffExprMatrix    = "KBaseFeatureValues.DifferentialExpressionMatrix"
	TypeExpressionMatrix  = "KBaseFeatureValues.ExpressionMatrix"
	TypeFeatureSet        = "KBaseCollections.FeatureSet"
	TypeReport            = "KBaseReport.Report"
	TypeGenome            = "KBaseGenomes.Genome"
)

// ObjectInfo describes one stored version of a workspace object.
type ObjectInfo struct {
	ObjectID      int64     `json:"object_id" yaml:"object_id"`
	Name          string    `json:"name" yaml:"name"`
	Type          string    `json:"type" yaml:"type"`
	SaveDate      time.Time `json:"save_date" yaml:"save_date"`
	Version       int       `json:"version" yaml:"version"`
	WorkspaceID   int64     `json:"workspace_id" yaml:"workspace_id"`
	WorkspaceName string    `json:"workspace_name" yaml:"workspace_name"`
	Size          int64     `json:"size" yaml:"size"`
}

// Ref renders the absolute reference <workspace_id>/<object_id>/<version>.
func (o ObjectInfo) Ref() string {
	return fmt.Sprintf("%d/%d/%d", o.WorkspaceID, o.ObjectID, o.Version)
}

// Object is a fetched workspace object: its metadata and raw JSON payload.
type Object struct {
	Info ObjectInfo
	Data json.RawMessage
}

// Decode unmarshals the payload into v.
func (o Object) Decode(v any) error {
	if err := json.Unmarshal(o.Data, v); err != nil {
		return fmt.Errorf("decoding %s object %s: %w", o.Info.Type, o.Info.Ref(), err)
	}
	return nil
}

// SetItem references one member of an object set.
type SetItem struct {
	Ref   string `json:"ref" yaml:"ref"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DifferentialExpressionMatrixSet groups differential expression matrices,
// typically one per condition pair.
type DifferentialExpressionMatrixSet struct {
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Items       []SetItem `json:"items" yaml:"items"`
}

// MeasurementMatrix is a row-keyed table of textual measurements. Row values
// are positional: log2 fold change, p-value, q-value.
type MeasurementMatrix struct {
	RowIDs []string        `json:"row_ids" yaml:"row_ids"`
	ColIDs []string        `json:"col_ids,omitempty" yaml:"col_ids,omitempty"`
	Values [][]Measurement `json:"values" yaml:"values"`
}

// DifferentialExpressionMatrix holds per-gene statistics for one comparison.
type DifferentialExpressionMatrix struct {
	GenomeRef string            `json:"genome_ref" yaml:"genome_ref"`
	Data      MeasurementMatrix `json:"data" yaml:"data"`
}

// ValueMatrix is a row-keyed numeric table. Rows are features, columns are
// samples; Values[i] belongs to RowIDs[i]. Cells may be null.
type ValueMatrix struct {
	RowIDs []string       `json:"row_ids" yaml:"row_ids"`
	ColIDs []string       `json:"col_ids" yaml:"col_ids"`
	Values [][]null.Float `json:"values" yaml:"values"`
}

// ExpressionMatrix is an expression table restricted to one genome.
type ExpressionMatrix struct {
	Type        string      `json:"type,omitempty" yaml:"type,omitempty"`
	Scale       string      `json:"scale,omitempty" yaml:"scale,omitempty"`
	GenomeRef   string      `json:"genome_ref,omitempty" yaml:"genome_ref,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Data        ValueMatrix `json:"data" yaml:"data"`
}

// FeatureSet is a named, ordered collection of features attributed to a
// genome. ElementOrdering fixes the declared order; Elements maps each
// feature to the genome references it is attested in. A FeatureSet is built
// once and not modified after it is handed to the store.
type FeatureSet struct {
	Description     string              `json:"description" yaml:"description"`
	ElementOrdering []string            `json:"element_ordering" yaml:"element_ordering"`
	Elements        map[string][]string `json:"elements" yaml:"elements"`
}

// Genome is the subset of a genome object this tool reads.
type Genome struct {
	ID             string `json:"id,omitempty" yaml:"id,omitempty"`
	ScientificName string `json:"scientific_name,omitempty" yaml:"scientific_name,omitempty"`
}

// CreatedObject lists an object produced by a run in its report.
type CreatedObject struct {
	Ref         string `json:"ref" yaml:"ref"`
	Description string `json:"description" yaml:"description"`
}

// FoldChangeStats summarizes the effective log2 fold changes of one polarity.
type FoldChangeStats struct {
	Min    float64 `json:"min" yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	Max    float64 `json:"max" yaml:"max"`
}

// PolaritySummary describes the features classified in one direction.
type PolaritySummary struct {
	Count      int              `json:"count" yaml:"count"`
	FeatureIDs []string         `json:"feature_ids" yaml:"feature_ids"`
	FoldChange *FoldChangeStats `json:"fold_change,omitempty" yaml:"fold_change,omitempty"`
}

// ReportSummary is the structured body of a run report.
type ReportSummary struct {
	GenomeRef  string          `json:"genome_ref" yaml:"genome_ref"`
	GenomeName string          `json:"genome_name" yaml:"genome_name"`
	Up         PolaritySummary `json:"up" yaml:"up"`
	Down       PolaritySummary `json:"down" yaml:"down"`
}

// Report records what a run produced.
type Report struct {
	Message        string          `json:"message" yaml:"message"`
	ObjectsCreated []CreatedObject `json:"objects_created" yaml:"objects_created"`
	Summary        ReportSummary   `json:"summary" yaml:"summary"`
}
