// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the featureset-utils CLI.
package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/featureset-utils/internal/logging"
	"github.com/pdiddy/featureset-utils/internal/workspace"
	"github.com/pdiddy/featureset-utils/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Startup results of initConfig, logged once the logger is configured.
var (
	dotenvErr      error
	configFileUsed string
)

// rootCmd is the base command for the featureset-utils CLI.
var rootCmd = &cobra.Command{
	Use:   "featureset-utils",
	Short: "Build feature sets from differential expression results",
	Long: `featureset-utils classifies the genes of a differential expression set as
up-regulated, down-regulated, or excluded using p-value, q-value, and fold
change cutoffs. It saves one feature set per polarity, optionally a filtered
expression matrix, and a summary report to a local workspace store.

Use "workspace" to create workspaces and import objects, "upload" to run the
pipeline, and "classify" to classify a gene table without a workspace.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		if err := logging.Init(level); err != nil {
			return err
		}
		if dotenvErr != nil {
			logging.Debug("no .env loaded, using process environment", zap.Error(dotenvErr))
		}
		if configFileUsed != "" {
			logging.Info("using config file", zap.String("path", configFileUsed))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./featureset-utils.yaml or ~/.config/featureset-utils/featureset-utils.yaml)")
	flags.String("workspace-dir", "workspace", "directory holding workspace.db")
	flags.String("scratch-dir", types.DefaultScratchDir, "base directory for per-run result directories")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("workspace_dir", flags.Lookup("workspace-dir"))
	_ = viper.BindPFlag("scratch_dir", flags.Lookup("scratch-dir"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func initConfig() {
	dotenvErr = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("featureset-utils")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "featureset-utils"))
		}
	}

	viper.SetEnvPrefix("FEATURESET_UTILS")
	viper.AutomaticEnv()

	// A missing config file is not an error; flags, env, and defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		configFileUsed = viper.ConfigFileUsed()
	}
}

// --- shared helpers ---

func workspaceConfig() types.WorkspaceConfig {
	return types.WorkspaceConfig{Dir: viper.GetString("workspace_dir")}
}

func builderConfig() types.BuilderConfig {
	return types.BuilderConfig{
		ScratchDir:                     viper.GetString("scratch_dir"),
		FeatureSetSuffix:               viper.GetString("feature_set_suffix"),
		FilteredExpressionMatrixSuffix: viper.GetString("filtered_expression_matrix_suffix"),
		Workers:                        viper.GetInt("workers"),
	}.WithDefaults()
}

func openStore() (*workspace.Store, error) {
	return workspace.NewStore(workspaceConfig())
}

func main() {
	err := rootCmd.Execute()
	_ = logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
