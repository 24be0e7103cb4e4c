// Package api provides the public API for using shmixer as a library.
//
// It exposes the same pipeline the command line uses: strip → flatten →
// join, with optional bundling and variable obfuscation.
//
// Basic usage:
//
//	m, err := api.New(api.Options{Obfuscate: true})
//	if err != nil {
//	    log.Fatalf("creating minifier: %v", err)
//	}
//
//	out, err := m.MinifyCode("local foo=1\necho $foo\n")
//	if err != nil {
//	    log.Fatalf("minifying: %v", err)
//	}
//	fmt.Println(out)
package api

import (
	"fmt"

	"github.com/whit3rabbit/shmixer/internal/config"
	"github.com/whit3rabbit/shmixer/internal/minifier"
)

// Options configures a new Minifier.
type Options struct {
	// ConfigPath is the path to a YAML configuration file. If empty the
	// default configuration is used.
	ConfigPath string

	// Bundle enables the import-inlining phase. SearchPaths are the
	// extra directories probed for import targets.
	Bundle      bool
	SearchPaths []string

	// Obfuscate enables variable discovery and renaming. ExcludeVars
	// are merged into the configured ignore-pattern list.
	Obfuscate   bool
	ExcludeVars []string

	// Silent suppresses informational output.
	Silent bool
}

// Minifier is the minification engine. It is cheap to construct and safe
// to reuse across inputs; each Minify call is independent.
type Minifier struct {
	Config *config.Config
}

// New creates a Minifier from options, loading the YAML config when a
// path is given and applying the option toggles on top.
func New(options Options) (*Minifier, error) {
	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if options.Bundle {
		cfg.Bundle.Enabled = true
	}
	cfg.Bundle.SearchPaths = append(cfg.Bundle.SearchPaths, options.SearchPaths...)
	if options.Obfuscate {
		cfg.Obfuscation.Enabled = true
	}
	cfg.Obfuscation.ExcludeVars = append(cfg.Obfuscation.ExcludeVars, options.ExcludeVars...)
	if options.Silent {
		cfg.Silent = true
	}
	return &Minifier{Config: cfg}, nil
}

// MinifyCode minifies a bash script given as a string. Relative imports
// cannot be resolved without a file location, so bundling uses the
// working directory and the configured search paths.
func (m *Minifier) MinifyCode(code string) (string, error) {
	return minifier.Minify(code, "", m.Config)
}

// MinifyFile minifies inputPath and writes the result to outputPath,
// overwriting it.
func (m *Minifier) MinifyFile(inputPath, outputPath string) error {
	return minifier.ProcessFile(inputPath, outputPath, m.Config)
}

// SaveDefaultConfig writes the default configuration to a YAML file, for
// embedders that want a starting point to edit.
func SaveDefaultConfig(path string) error {
	return config.Save(path)
}
