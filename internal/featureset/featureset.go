// Package featureset assembles feature sets from classified gene ids.
package featureset

import "github.com/pdiddy/featureset-utils/pkg/types"

// Description is the description given to feature sets built from
// differential expression results.
const Description = "Generated FeatureSet from DifferentialExpression"

// Assemble builds a feature set whose element ordering is ids, in order, and
// whose elements map every id to genomeRef. ids is copied; later changes to it
// do not affect the result.
func Assemble(ids []string, genomeRef string) types.FeatureSet {
	fs := types.FeatureSet{
		Description:     Description,
		ElementOrdering: append([]string{}, ids...),
		Elements:        make(map[string][]string, len(ids)),
	}
	for _, id := range ids {
		fs.Elements[id] = []string{genomeRef}
	}
	return fs
}
