// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package builder runs the feature set construction pipeline: parse a
// differential expression set, classify its genes, optionally filter an
// expression matrix, and save the up and down feature sets with a report.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/featureset-utils/internal/classify"
	"github.com/pdiddy/featureset-utils/internal/diffexpr"
	"github.com/pdiddy/featureset-utils/internal/featureset"
	"github.com/pdiddy/featureset-utils/internal/matrix"
	"github.com/pdiddy/featureset-utils/internal/report"
	"github.com/pdiddy/featureset-utils/pkg/types"
)

// ObjectStore is the workspace surface the builder reads from and saves to.
type ObjectStore interface {
	WorkspaceID(ctx context.Context, nameOrID string) (int64, error)
	GetObject(ctx context.Context, ref string) (types.Object, error)
	GetObjectInfo(ctx context.Context, ref string) (types.ObjectInfo, error)
	SaveObject(ctx context.Context, wsID int64, objType, name string, data any) (types.ObjectInfo, error)
}

// Builder holds the collaborators shared by every run. A Builder keeps no
// per-run state and may run several uploads at once.
type Builder struct {
	store ObjectStore
	cfg   types.BuilderConfig
	log   *zap.Logger
}

// New returns a Builder. A nil logger disables logging.
func New(store ObjectStore, cfg types.BuilderConfig, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{store: store, cfg: cfg.WithDefaults(), log: log}
}

// UploadFeatureSetFromDiffExpr classifies the genes of a differential
// expression set and saves one feature set per polarity. When
// params.ExpressionMatrixRef is set, the matrix restricted to the classified
// genes is saved as well.
//
// Saves are not rolled back: if a later step fails, objects saved by earlier
// steps remain in the workspace and the error names the failing step.
func (b *Builder) UploadFeatureSetFromDiffExpr(ctx context.Context, params types.UploadParams) (types.UploadResult, error) {
	b.log.Info("start validating params", zap.String("diff_expression_ref", params.DiffExpressionRef))
	cutoff, err := params.Cutoff()
	if err != nil {
		return types.UploadResult{}, err
	}

	resultDir := filepath.Join(b.cfg.ScratchDir, uuid.NewString())
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return types.UploadResult{}, fmt.Errorf("creating result directory %s: %w", resultDir, err)
	}

	setInfo, err := b.store.GetObjectInfo(ctx, params.DiffExpressionRef)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("fetching differential expression set info: %w", err)
	}

	b.log.Info("start processing differential expression object", zap.String("name", setInfo.Name))
	table, err := diffexpr.ParseSet(ctx, b.store, params.DiffExpressionRef)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("parsing differential expression set: %w", err)
	}
	tablePath := filepath.Join(resultDir, diffexpr.TableFile)
	if err := diffexpr.WriteTableFile(tablePath, table.Rows); err != nil {
		return types.UploadResult{}, err
	}
	b.log.Debug("wrote gene table", zap.String("path", tablePath), zap.Int("rows", len(table.Rows)))

	b.log.Info("start processing gene table", zap.Int("rows", len(table.Rows)))
	result, err := classify.Classify(table.Rows, cutoff)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("classifying genes: %w", err)
	}
	b.log.Info("classified genes", zap.Int("up", len(result.Up)), zap.Int("down", len(result.Down)))

	wsID, err := b.store.WorkspaceID(ctx, params.WorkspaceName)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("resolving workspace %s: %w", params.WorkspaceName, err)
	}

	out := types.UploadResult{ResultDirectory: resultDir}

	if params.ExpressionMatrixRef != "" {
		suffix := params.FilteredExpressionMatrixSuffix
		if suffix == "" {
			suffix = b.cfg.FilteredExpressionMatrixSuffix
		}
		ref, err := b.filterExpressionMatrix(ctx, wsID, params.ExpressionMatrixRef, suffix, result.Retained())
		if err != nil {
			return types.UploadResult{}, err
		}
		out.FilteredExpressionMatrixRef = ref
	}

	suffix := params.FeatureSetSuffix
	if suffix == "" {
		suffix = b.cfg.FeatureSetSuffix
	}

	b.log.Info("start saving FeatureSet object")
	up, err := b.saveFeatureSet(ctx, wsID, setInfo.Name+"_up"+suffix, result.Up, table.GenomeRef)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("saving up feature set: %w", err)
	}
	out.UpFeatureSetRef = up

	down, err := b.saveFeatureSet(ctx, wsID, setInfo.Name+"_down"+suffix, result.Down, table.GenomeRef)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("saving down feature set: %w", err)
	}
	out.DownFeatureSetRef = down

	out.ReportName, out.ReportRef, err = report.Create(ctx, b.store, report.Input{
		WorkspaceID:                 wsID,
		GenomeRef:                   table.GenomeRef,
		UpFeatureSetRef:             out.UpFeatureSetRef,
		DownFeatureSetRef:           out.DownFeatureSetRef,
		FilteredExpressionMatrixRef: out.FilteredExpressionMatrixRef,
		Result:                      result,
	}, b.log)
	if err != nil {
		return types.UploadResult{}, err
	}

	b.log.Info("finished generating feature set",
		zap.String("up", out.UpFeatureSetRef),
		zap.String("down", out.DownFeatureSetRef),
		zap.String("report", out.ReportName))
	return out, nil
}

func (b *Builder) filterExpressionMatrix(ctx context.Context, wsID int64, ref, suffix string, keep map[string]struct{}) (string, error) {
	b.log.Info("start saving ExpressionMatrix object", zap.String("expression_matrix_ref", ref))

	obj, err := b.store.GetObject(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("fetching expression matrix: %w", err)
	}

	filtered, rows, err := matrix.FilterDocument(obj.Data, keep)
	if err != nil {
		return "", fmt.Errorf("filtering expression matrix %s: %w", ref, err)
	}

	name := matrix.FilteredName(obj.Info.Name, suffix)
	info, err := b.store.SaveObject(ctx, wsID, types.TypeExpressionMatrix, name, filtered)
	if err != nil {
		return "", fmt.Errorf("saving filtered expression matrix: %w", err)
	}
	b.log.Info("saved filtered expression matrix", zap.String("name", name), zap.Int("rows", rows))
	return info.Ref(), nil
}

func (b *Builder) saveFeatureSet(ctx context.Context, wsID int64, name string, ids []string, genomeRef string) (string, error) {
	info, err := b.store.SaveObject(ctx, wsID, types.TypeFeatureSet, name, featureset.Assemble(ids, genomeRef))
	if err != nil {
		return "", err
	}
	b.log.Debug("saved feature set", zap.String("name", name), zap.Int("elements", len(ids)))
	return info.Ref(), nil
}
