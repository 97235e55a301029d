package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NorthSeacoder/depseeker"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigName = ".depseeker.yaml"

// fileConfig mirrors the engine options that make sense to persist.
// Pointer fields distinguish "absent" from an explicit false.
type fileConfig struct {
	Extensions   []string          `yaml:"extensions"`
	IncludeNpm   *bool             `yaml:"includeNpm"`
	Exclude      []string          `yaml:"exclude"`
	TSConfig     string            `yaml:"tsConfig"`
	Aliases      map[string]string `yaml:"aliases"`
	SkipTypeOnly *bool             `yaml:"skipTypeOnly"`
	Concurrency  int               `yaml:"concurrency"`
}

// loadFileConfig reads path. A missing file is an error only when the
// user named the path explicitly; a missing default config is fine.
func loadFileConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// buildEngine assembles an engine from flags layered over the config
// file. A flag the user set wins over the file; the file wins over
// engine defaults.
func buildEngine(cmd *cobra.Command) (*depseeker.Engine, error) {
	configPath := flagConfig
	explicit := cmd.Flags().Changed("config")
	if !explicit {
		configPath = filepath.Join(flagBaseDir, defaultConfigName)
	}
	cfg, err := loadFileConfig(configPath, explicit)
	if err != nil {
		return nil, err
	}

	opts := []depseeker.Option{depseeker.WithBaseDir(flagBaseDir)}

	exts := cfg.Extensions
	if cmd.Flags().Changed("extensions") {
		exts = splitList(flagExtensions)
	}
	if len(exts) > 0 {
		opts = append(opts, depseeker.WithExtensions(exts...))
	}

	includeNpm := cfg.IncludeNpm != nil && *cfg.IncludeNpm
	if cmd.Flags().Changed("include-npm") {
		includeNpm = flagIncludeNpm
	}
	if includeNpm {
		opts = append(opts, depseeker.WithIncludeNpm(true))
	}

	exclude := cfg.Exclude
	if cmd.Flags().Changed("exclude") {
		exclude = flagExclude
	}
	if len(exclude) > 0 {
		opts = append(opts, depseeker.WithExcludeFilters(exclude...))
	}

	tsconfig := cfg.TSConfig
	if cmd.Flags().Changed("ts-config") {
		tsconfig = flagTSConfig
	}
	if tsconfig != "" {
		opts = append(opts, depseeker.WithTSConfig(tsconfig))
	}

	aliases := cfg.Aliases
	if cmd.Flags().Changed("alias") {
		aliases, err = parseAliases(flagAliases)
		if err != nil {
			return nil, err
		}
	}
	if len(aliases) > 0 {
		opts = append(opts, depseeker.WithAliases(aliases))
	}

	skipTypeOnly := cfg.SkipTypeOnly != nil && *cfg.SkipTypeOnly
	if cmd.Flags().Changed("skip-type-only") {
		skipTypeOnly = flagSkipTypeOnly
	}
	if skipTypeOnly {
		opts = append(opts, depseeker.WithSkipTypeOnly(true))
	}

	concurrency := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = flagConcurrency
	}
	if concurrency > 0 {
		opts = append(opts, depseeker.WithConcurrency(concurrency))
	}

	if flagVerbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, depseeker.WithLogger(logger))
	}

	return depseeker.New(opts...)
}

// splitList splits a comma-separated flag value, dropping empty parts.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAliases parses repeated prefix=dir flag values.
func parseAliases(pairs []string) (map[string]string, error) {
	aliases := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		prefix, dir, ok := strings.Cut(pair, "=")
		if !ok || prefix == "" || dir == "" {
			return nil, fmt.Errorf("invalid alias %q: expected prefix=dir", pair)
		}
		aliases[prefix] = dir
	}
	return aliases, nil
}
