// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/featureset-utils/internal/builder"
	"github.com/pdiddy/featureset-utils/internal/logging"
	"github.com/pdiddy/featureset-utils/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Build up and down feature sets from a differential expression set",
	Long: `Upload classifies the genes of a differential expression set and saves an
up-regulated and a down-regulated feature set to the workspace. When
--expression-matrix-ref is given, the expression matrix restricted to the
classified genes is saved too. A report object summarizes each run.

Parameters come from flags, from one or more --params files (YAML or JSON),
or both; explicitly set flags override file values. Several --params files
run concurrently, bounded by the "workers" setting. A failing run does not
stop the others, and the command fails if any run failed.`,
	Example: `  featureset-utils upload --diff-expression-ref lab/heat_stress --workspace-name lab \
      --p-cutoff 0.05 --q-cutoff 0.05 --fold-scale-type logarithm --fold-change-cutoff 1
  featureset-utils upload --params run1.yaml --params run2.yaml --format json`,
	RunE: runUpload,
}

func init() {
	addUploadFlags(uploadCmd.Flags())
	rootCmd.AddCommand(uploadCmd)
}

func addUploadFlags(f *pflag.FlagSet) {
	f.StringArray("params", nil, "parameter file (YAML or JSON); repeat for a batch")
	f.String("diff-expression-ref", "", "reference of the differential expression set")
	f.String("expression-matrix-ref", "", "reference of an expression matrix to filter")
	f.String("workspace-name", "", "workspace to save results to")
	f.Float64("p-cutoff", 0, "inclusive p-value upper bound")
	f.Float64("q-cutoff", 0, "inclusive q-value upper bound")
	f.String("fold-scale-type", "", "fold change scale: linear or logarithm")
	f.Float64("fold-change-cutoff", 0, "fold change cutoff on the log2 scale")
	f.String("feature-set-suffix", "", "suffix of generated feature set names")
	f.String("filtered-expression-matrix-suffix", "", "suffix of the filtered expression matrix name")
	f.Bool("legacy-carry-over", false, "let rows with missing statistics repeat the previous row's decision")
	f.String("format", "text", "output format: text, json, or yaml")
}

func runUpload(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	files, _ := cmd.Flags().GetStringArray("params")
	if err := checkFormat(format, "text", "json", "yaml"); err != nil {
		return err
	}

	runs, err := uploadRuns(cmd.Flags(), files)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	b := builder.New(store, builderConfig(), logging.L())

	if len(runs) == 1 {
		res, err := b.UploadFeatureSetFromDiffExpr(context.Background(), runs[0])
		if err != nil {
			return err
		}
		return printUploadResult(os.Stdout, format, res)
	}

	batch := b.UploadBatch(context.Background(), runs)
	if err := printBatchResult(os.Stdout, format, batch); err != nil {
		return err
	}
	if batch.HasFailures() {
		return fmt.Errorf("%d of %d run(s) failed", batch.Failed(), len(runs))
	}
	return nil
}

// uploadRuns builds one UploadParams per params file, or a single one from
// flags when no file is given. Flags the user set explicitly override file values.
func uploadRuns(flags *pflag.FlagSet, files []string) ([]types.UploadParams, error) {
	if len(files) == 0 {
		p := types.UploadParams{}
		applyUploadFlags(flags, &p)
		return []types.UploadParams{p}, nil
	}

	runs := make([]types.UploadParams, 0, len(files))
	for _, path := range files {
		p, err := types.LoadUploadParams(path)
		if err != nil {
			return nil, err
		}
		applyUploadFlags(flags, &p)
		runs = append(runs, p)
	}
	return runs, nil
}

func applyUploadFlags(flags *pflag.FlagSet, p *types.UploadParams) {
	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	setFloat := func(name string, dst **float64) {
		if flags.Changed(name) {
			v, _ := flags.GetFloat64(name)
			*dst = &v
		}
	}

	setString("diff-expression-ref", &p.DiffExpressionRef)
	setString("expression-matrix-ref", &p.ExpressionMatrixRef)
	setString("workspace-name", &p.WorkspaceName)
	setFloat("p-cutoff", &p.PCutoff)
	setFloat("q-cutoff", &p.QCutoff)
	setString("fold-scale-type", &p.FoldScaleType)
	setFloat("fold-change-cutoff", &p.FoldChangeCutoff)
	setString("feature-set-suffix", &p.FeatureSetSuffix)
	setString("filtered-expression-matrix-suffix", &p.FilteredExpressionMatrixSuffix)
	if flags.Changed("legacy-carry-over") {
		p.LegacyCarryOver, _ = flags.GetBool("legacy-carry-over")
	}
}

func printUploadResult(w io.Writer, format string, res types.UploadResult) error {
	if format != "text" {
		return encode(w, format, res)
	}
	fmt.Fprintf(w, "up feature set:    %s\n", res.UpFeatureSetRef)
	fmt.Fprintf(w, "down feature set:  %s\n", res.DownFeatureSetRef)
	if res.FilteredExpressionMatrixRef != "" {
		fmt.Fprintf(w, "filtered matrix:   %s\n", res.FilteredExpressionMatrixRef)
	}
	fmt.Fprintf(w, "report:            %s (%s)\n", res.ReportName, res.ReportRef)
	fmt.Fprintf(w, "result directory:  %s\n", res.ResultDirectory)
	return nil
}

// batchEntry is the serialized form of one batch outcome.
type batchEntry struct {
	DiffExpressionRef string              `json:"diff_expression_ref" yaml:"diff_expression_ref"`
	Result            *types.UploadResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error             string              `json:"error,omitempty" yaml:"error,omitempty"`
}

func printBatchResult(w io.Writer, format string, batch builder.BatchResult) error {
	if format != "text" {
		entries := make([]batchEntry, 0, len(batch.Outcomes))
		for _, o := range batch.Outcomes {
			e := batchEntry{DiffExpressionRef: o.Params.DiffExpressionRef}
			if o.Err != nil {
				e.Error = o.Err.Error()
			} else {
				res := o.Result
				e.Result = &res
			}
			entries = append(entries, e)
		}
		return encode(w, format, entries)
	}

	for _, o := range batch.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", o.Params.DiffExpressionRef, o.Err)
			continue
		}
		fmt.Fprintf(w, "done:    %s -> up %s, down %s, report %s\n",
			o.Params.DiffExpressionRef, o.Result.UpFeatureSetRef, o.Result.DownFeatureSetRef, o.Result.ReportName)
	}
	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		len(batch.Outcomes)-batch.Failed(), batch.Failed(), len(batch.Outcomes))
	return nil
}
