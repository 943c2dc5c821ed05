// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package diffexpr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// TableFile is the file name of the gene table written into a run's result directory.
const TableFile = "gene_results.csv"

// tableColumns are the header columns every gene table must carry.
var tableColumns = []string{"gene_id", "log2_fold_change", "p_value", "q_value"}

// ErrTableHeader is returned when a gene table lacks one of the required columns.
var ErrTableHeader = errors.New("gene table header is missing a required column")

// WriteTable writes rows as CSV with the header
// gene_id,log2_fold_change,p_value,q_value.
func WriteTable(w io.Writer, rows []types.DifferentialExpressionRow) error {
	if rows == nil {
		rows = []types.DifferentialExpressionRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing gene table: %w", err)
	}
	return nil
}

// WriteTableFile writes rows to path, replacing any existing file.
func WriteTableFile(path string, rows []types.DifferentialExpressionRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating gene table %s: %w", path, err)
	}
	if err := WriteTable(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable reads a gene table written by WriteTable. The header must name
// all of gene_id, log2_fold_change, p_value, and q_value; extra columns are
// ignored.
func ReadTable(r io.Reader) ([]types.DifferentialExpressionRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gene table: %w", err)
	}

	header, err := gocsv.DefaultCSVReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading gene table: %w", gocsv.ErrEmptyCSVFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading gene table header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []types.DifferentialExpressionRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("reading gene table: %w", err)
	}
	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = true
	}
	var missing []string
	for _, col := range tableColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (got %s)", ErrTableHeader,
			strings.Join(missing, ", "), strings.Join(header, ","))
	}
	return nil
}

// ReadTableFile reads the gene table at path.
func ReadTableFile(path string) ([]types.DifferentialExpressionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gene table %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}
