// Command castor is the CLI front end of the Castor kernel: it generates
// primitive BIM elements, evaluates Lisp design files, and exports the
// results to STEP and OBJ.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags.
	verbose    bool
	configPath string

	// Loaded project configuration.
	cfg Config

	// Logger, initialized in PersistentPreRunE.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "castor",
	Short: "Castor BIM kernel CLI",
	Long: `Castor is an exact boundary-representation kernel for BIM geometry.

The CLI generates primitive elements, evaluates Lisp design files into
part lists, and exports solids to STEP and meshes to OBJ.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("units", cfg.Units),
			zap.Float64("max_deviation", cfg.MaxDeviation))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to castor.yaml (default: ./castor.yaml if present)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(triangulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "castor:", err)
		os.Exit(1)
	}
}
