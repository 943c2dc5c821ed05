package types

// WorkspaceConfig holds settings for the local workspace object store.
type WorkspaceConfig struct {
	// Dir is the directory holding workspace.db.
	Dir string `json:"dir" yaml:"dir"`
}

// BuilderConfig holds settings for feature set construction runs.
type BuilderConfig struct {
	// ScratchDir is the base directory for per-run result directories.
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`

	// FeatureSetSuffix is appended to generated feature set names when a run
	// does not supply its own (default "_feature_set").
	FeatureSetSuffix string `json:"feature_set_suffix" yaml:"feature_set_suffix"`

	// FilteredExpressionMatrixSuffix replaces or extends the source matrix name
	// when a run does not supply its own (default "_filtered_expression_matrix").
	FilteredExpressionMatrixSuffix string `json:"filtered_expression_matrix_suffix" yaml:"filtered_expression_matrix_suffix"`

	// Workers bounds the number of runs executed concurrently in a batch (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// Default values for BuilderConfig fields left empty.
const (
	DefaultScratchDir                     = "scratch"
	DefaultFeatureSetSuffix               = "_feature_set"
	DefaultFilteredExpressionMatrixSuffix = "_filtered_expression_matrix"
	DefaultWorkers                        = 4
)

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c BuilderConfig) WithDefaults() BuilderConfig {
	if c.ScratchDir == "" {
		c.ScratchDir = DefaultScratchDir
	}
	if c.FeatureSetSuffix == "" {
		c.FeatureSetSuffix = DefaultFeatureSetSuffix
	}
	if c.FilteredExpressionMatrixSuffix == "" {
		c.FilteredExpressionMatrixSuffix = DefaultFilteredExpressionMatrixSuffix
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}
