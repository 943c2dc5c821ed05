// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/featureset-utils/internal/classify"
	"github.com/pdiddy/featureset-utils/internal/diffexpr"
	"github.com/pdiddy/featureset-utils/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a gene table CSV without a workspace",
	Long: `Classify reads a gene table (gene_id, log2_fold_change, p_value, q_value),
such as the gene_results.csv an upload run leaves in its result directory,
and prints the up- and down-regulated gene ids.`,
	RunE: runClassify,
}

func init() {
	addClassifyFlags(classifyCmd.Flags())
	for _, name := range []string{"table", "p-cutoff", "q-cutoff", "fold-scale-type", "fold-change-cutoff"} {
		_ = classifyCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(classifyCmd)
}

func addClassifyFlags(f *pflag.FlagSet) {
	f.String("table", "", "gene table CSV")
	f.Float64("p-cutoff", 0, "inclusive p-value upper bound")
	f.Float64("q-cutoff", 0, "inclusive q-value upper bound")
	f.String("fold-scale-type", "", "fold change scale: linear or logarithm")
	f.Float64("fold-change-cutoff", 0, "fold change cutoff on the log2 scale")
	f.Bool("legacy-carry-over", false, "let rows with missing statistics repeat the previous row's decision")
	f.String("format", "text", "output format: text, json, or yaml")
}

// classification is the printed result of the classify command.
type classification struct {
	Up   []string `json:"up" yaml:"up"`
	Down []string `json:"down" yaml:"down"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	path, _ := f.GetString("table")
	p, _ := f.GetFloat64("p-cutoff")
	q, _ := f.GetFloat64("q-cutoff")
	scale, _ := f.GetString("fold-scale-type")
	fc, _ := f.GetFloat64("fold-change-cutoff")
	legacy, _ := f.GetBool("legacy-carry-over")
	format, _ := f.GetString("format")
	if err := checkFormat(format, "text", "json", "yaml"); err != nil {
		return err
	}

	cfg, err := types.NewCutoffConfig(p, q, fc, scale)
	if err != nil {
		return err
	}
	cfg.LegacyCarryOver = legacy

	rows, err := diffexpr.ReadTableFile(path)
	if err != nil {
		return err
	}
	res, err := classify.Classify(rows, cfg)
	if err != nil {
		return err
	}
	return printClassification(os.Stdout, format, classification{Up: res.Up, Down: res.Down})
}

func printClassification(w io.Writer, format string, c classification) error {
	if format != "text" {
		return encode(w, format, c)
	}
	fmt.Fprintf(w, "up (%d):   %s\n", len(c.Up), strings.Join(c.Up, " "))
	fmt.Fprintf(w, "down (%d): %s\n", len(c.Down), strings.Join(c.Down, " "))
	return nil
}
