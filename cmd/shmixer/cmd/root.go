// Package cmd implements the command line interface for shmixer.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/shmixer/internal/config"
	"github.com/whit3rabbit/shmixer/internal/logging"
	"github.com/whit3rabbit/shmixer/internal/minifier"
)

var (
	cfgFile string
	cfg     *config.Config

	verbosity   int
	inputFile   string
	outputFile  string
	doBundle    bool
	searchPaths []string
	doObfuscate bool
	excludeVars []string
	ignoreVars  string
	silent      bool
)

var rootCmd = &cobra.Command{
	Use:   "shmixer",
	Short: "Bash script minifier with optional obfuscation and bundling",
	Long: `shmixer shrinks bash scripts by stripping comments and blank lines,
flattening indentation, and joining statements onto as few physical lines
as possible, while preserving heredocs, case statements, and multi-line
strings. It can optionally inline import/source statements into one
self-contained script (-B) and rename local variables to short generated
identifiers (-O).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbosity)
		if cfg == nil {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			cfg = loaded
			applyFlagOverrides(cfg, cmd)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(cmd); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		if err := minifier.ProcessFile(inputFile, outputFile, cfg); err != nil {
			return err
		}
		if !cfg.Silent {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputFile)
		}
		return nil
	},
}

// applyFlagOverrides copies flag values into the loaded config, but only
// for flags the user explicitly set.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("silent") {
		cfg.Silent = silent
	}
	if flags.Changed("bundle") {
		cfg.Bundle.Enabled = doBundle
	}
	if flags.Changed("search-path") {
		cfg.Bundle.SearchPaths = append(cfg.Bundle.SearchPaths, searchPaths...)
	}
	if flags.Changed("obfuscate") {
		cfg.Obfuscation.Enabled = doObfuscate
	}
	if flags.Changed("exclude-var") {
		cfg.Obfuscation.ExcludeVars = append(cfg.Obfuscation.ExcludeVars, excludeVars...)
	}
	if flags.Changed("ignore-vars") {
		cfg.Obfuscation.IgnoreVars = ignoreVars
	}
}

// validateFlags enforces the flag dependencies: -S requires -B, and
// -V/-I require -O.
func validateFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("search-path") && !cfg.Bundle.Enabled {
		return fmt.Errorf("-S/--search-path requires -B/--bundle")
	}
	if flags.Changed("exclude-var") && !cfg.Obfuscation.Enabled {
		return fmt.Errorf("-V/--exclude-var requires -O/--obfuscate")
	}
	if flags.Changed("ignore-vars") && !cfg.Obfuscation.Enabled {
		return fmt.Errorf("-I/--ignore-vars requires -O/--obfuscate")
	}
	return nil
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already printed the error; exit non-zero.
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./shmixer.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "suppress informational output")

	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input script file (required)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file, overwritten (required)")
	rootCmd.Flags().BoolVarP(&doBundle, "bundle", "B", false, "resolve and inline import/source statements")
	rootCmd.Flags().StringArrayVarP(&searchPaths, "search-path", "S", nil, "additional import search directory (repeatable, requires -B)")
	rootCmd.Flags().BoolVarP(&doObfuscate, "obfuscate", "O", false, "rename local variables to short generated names")
	rootCmd.Flags().StringArrayVarP(&excludeVars, "exclude-var", "V", nil, "variable name to exclude from obfuscation (repeatable, requires -O)")
	rootCmd.Flags().StringVarP(&ignoreVars, "ignore-vars", "I", "usage,args", "comma-separated ignore regex patterns, or * for all (requires -O)")

	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")
}
