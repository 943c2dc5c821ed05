// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report builds and saves the summary report of a feature set run.
package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/pdiddy/featureset-utils/internal/classify"
	"github.com/pdiddy/featureset-utils/pkg/types"
)

// NamePrefix starts the name of every saved report object.
const NamePrefix = "kb_FeatureSetUtils_report_"

// Store is the part of the workspace a report needs.
type Store interface {
	GetObject(ctx context.Context, ref string) (types.Object, error)
	SaveObject(ctx context.Context, wsID int64, objType, name string, data any) (types.ObjectInfo, error)
}

// Input describes a finished run.
type Input struct {
	WorkspaceID                 int64
	GenomeRef                   string
	UpFeatureSetRef             string
	DownFeatureSetRef           string
	FilteredExpressionMatrixRef string
	Result                      classify.Result
}

// Build assembles the report body. genomeName may be empty when the genome
// could not be looked up.
func Build(in Input, genomeName string) types.Report {
	created := []types.CreatedObject{
		{Ref: in.UpFeatureSetRef, Description: "Upper FeatureSet Object"},
		{Ref: in.DownFeatureSetRef, Description: "Lower FeatureSet Object"},
	}
	if in.FilteredExpressionMatrixRef != "" {
		created = append(created, types.CreatedObject{
			Ref:         in.FilteredExpressionMatrixRef,
			Description: "Filtered ExpressionMatrix Object",
		})
	}

	genome := in.GenomeRef
	if genomeName != "" {
		genome = fmt.Sprintf("%s (%s)", genomeName, in.GenomeRef)
	}

	return types.Report{
		Message: fmt.Sprintf("Reference genome: %s\nUp-regulated features: %d\nDown-regulated features: %d",
			genome, len(in.Result.Up), len(in.Result.Down)),
		ObjectsCreated: created,
		Summary: types.ReportSummary{
			GenomeRef:  in.GenomeRef,
			GenomeName: genomeName,
			Up:         polarity(in.Result.Up, in.Result.UpFoldChanges),
			Down:       polarity(in.Result.Down, in.Result.DownFoldChanges),
		},
	}
}

func polarity(ids []string, foldChanges []float64) types.PolaritySummary {
	s := types.PolaritySummary{
		Count:      len(ids),
		FeatureIDs: append([]string{}, ids...),
	}
	if len(foldChanges) == 0 {
		return s
	}
	// The inputs are non-empty, so these cannot fail.
	lo, _ := stats.Min(foldChanges)
	med, _ := stats.Median(foldChanges)
	hi, _ := stats.Max(foldChanges)
	s.FoldChange = &types.FoldChangeStats{Min: lo, Median: med, Max: hi}
	return s
}

// Create builds the report and saves it under a unique name. The genome name
// is looked up best-effort; a failed lookup is logged and the ref is used alone.
func Create(ctx context.Context, store Store, in Input, log *zap.Logger) (name, ref string, err error) {
	log.Info("start creating report")

	genomeName, err := lookupGenomeName(ctx, store, in.GenomeRef)
	if err != nil {
		log.Warn("genome lookup failed", zap.String("genome_ref", in.GenomeRef), zap.Error(err))
	}

	name = NamePrefix + uuid.NewString()
	saved, err := store.SaveObject(ctx, in.WorkspaceID, types.TypeReport, name, Build(in, genomeName))
	if err != nil {
		return "", "", fmt.Errorf("saving report: %w", err)
	}
	return saved.Name, saved.Ref(), nil
}

// lookupGenomeName returns the scientific name of the genome, or its object
// name when the genome has none.
func lookupGenomeName(ctx context.Context, store Store, genomeRef string) (string, error) {
	if genomeRef == "" {
		return "", nil
	}
	obj, err := store.GetObject(ctx, genomeRef)
	if err != nil {
		return "", err
	}
	var g types.Genome
	if err := obj.Decode(&g); err != nil {
		return "", err
	}
	if g.ScientificName != "" {
		return g.ScientificName, nil
	}
	return obj.Info.Name, nil
}
