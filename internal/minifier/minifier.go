// Package minifier orchestrates the minification pipeline:
//
//  1. Bundle (optional): resolve and inline import/source/. statements
//  2. Strip: remove comments, blanks, imports, `set -euo pipefail`
//  3. Flatten: remove indentation, trailing semicolons, EOL comments
//  4. Obfuscate (optional): rename local variables to generated names
//  5. Join: collapse newlines into minimal single-line output
//
// Each phase is a total function from one in-memory text representation
// to the next; any I/O failure aborts the run.
package minifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/whit3rabbit/shmixer/internal/bundle"
	"github.com/whit3rabbit/shmixer/internal/config"
	"github.com/whit3rabbit/shmixer/internal/logging"
	"github.com/whit3rabbit/shmixer/internal/scrambler"
	"github.com/whit3rabbit/shmixer/internal/transformer"
)

// Minify runs the pipeline over source. inputPath is only used by the
// bundle phase to resolve relative imports; pass "" when bundling is
// disabled or the source does not come from a file.
func Minify(source, inputPath string, cfg *config.Config) (string, error) {
	log := logging.GetLogger("minifier")

	if cfg.Bundle.Enabled {
		bundled, err := bundle.Bundle(source, inputPath, &bundle.Config{
			SearchPaths: cfg.Bundle.SearchPaths,
		})
		if err != nil {
			return "", err
		}
		source = bundled
	}

	lines := transformer.StripLines(source)
	log.Debug().Int("lines", len(lines)).Msg("stripped")
	lines = transformer.FlattenLines(lines)

	if cfg.Obfuscation.Enabled {
		// Discovery runs on the pre-strip source: the
		// `# obfus ignore variable` annotations are comments and strip
		// has already removed them from `lines`.
		patterns, err := scrambler.ParseIgnorePatterns(ignoreList(cfg))
		if err != nil {
			return "", err
		}
		vars := scrambler.DiscoverVariables(source, patterns)
		log.Debug().Int("variables", len(vars)).Msg("discovered variables")
		renames := scrambler.BuildRenameMap(vars, cfg.Obfuscation.VarPrefix)
		lines = scrambler.NewObfuscator(vars, renames).ObfuscateLines(lines)
	}

	return transformer.JoinNewlines(strings.Join(lines, "\n")), nil
}

// ignoreList merges the exclude-variable names into the comma-separated
// ignore pattern list.
func ignoreList(cfg *config.Config) string {
	if len(cfg.Obfuscation.ExcludeVars) == 0 {
		return cfg.Obfuscation.IgnoreVars
	}
	parts := append([]string{cfg.Obfuscation.IgnoreVars}, cfg.Obfuscation.ExcludeVars...)
	return strings.Join(parts, ",")
}

// ProcessFile minifies inputPath and writes the result to outputPath,
// overwriting it. Read and write failures are fatal and carry the
// offending path.
func ProcessFile(inputPath, outputPath string, cfg *config.Config) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	result, err := Minify(string(data), inputPath, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(result), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}
