package main

import (
	"context"
	"fmt"
	"os"

	"github.com/NorthSeacoder/depseeker"
	"github.com/spf13/cobra"
)

var (
	flagBaseDir      string
	flagFormat       string
	flagOutput       string
	flagConfig       string
	flagVerbose      bool
	flagExtensions   string
	flagIncludeNpm   bool
	flagExclude      []string
	flagTSConfig     string
	flagAliases      []string
	flagSkipTypeOnly bool
	flagConcurrency  int
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "depseeker",
	Short:         "Static dependency graphs for JavaScript and TypeScript",
	Long:          "Depseeker parses a source tree with tree-sitter, resolves every module reference against the filesystem and configured aliases, and prints the resulting file-level dependency graph.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", ".", "directory graph paths are relative to")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text|dot")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "write rendered output to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .depseeker.yaml in the base dir)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&flagExtensions, "extensions", "", "comma-separated source extensions (default: ts,tsx,js,jsx,mjs,cjs)")
	rootCmd.PersistentFlags().BoolVar(&flagIncludeNpm, "include-npm", false, "keep npm package names in the graph as terminal nodes")
	rootCmd.PersistentFlags().StringArrayVar(&flagExclude, "exclude", nil, "glob pattern to exclude, matched against base-relative paths (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagTSConfig, "ts-config", "", "tsconfig/jsconfig path for alias resolution")
	rootCmd.PersistentFlags().StringArrayVar(&flagAliases, "alias", nil, "bundler alias as prefix=dir (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&flagSkipTypeOnly, "skip-type-only", false, "drop imports that exist purely for the type system")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "max files processed in parallel (default: CPU count)")

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(circularCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Build the dependency graph from an entry file or directory",
	Long:  "Traverses the dependency closure of the entry and prints the graph. A directory entry seeds every source file beneath it; the default entry is the base dir itself.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd)
	if err != nil {
		return outputError(err)
	}

	res, err := eng.BuildGraph(context.Background(), entryArg(args))
	if err != nil {
		return outputError(err)
	}

	warnToStderr(res)
	out, done, err := openOutput()
	if err != nil {
		return outputError(err)
	}
	if err := outputGraph(out, res); err != nil {
		_ = done()
		return outputError(err)
	}
	if err := done(); err != nil {
		return outputError(err)
	}
	return nil
}

var circularCmd = &cobra.Command{
	Use:   "circular [path]",
	Short: "List dependency cycles reachable from an entry",
	Long:  "Builds the graph and reports its cycles. Exits with status 1 when at least one cycle exists, so the command can gate CI.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCircular,
}

func runCircular(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd)
	if err != nil {
		return outputError(err)
	}

	res, err := eng.BuildGraph(context.Background(), entryArg(args))
	if err != nil {
		return outputError(err)
	}

	warnToStderr(res)
	cycles := res.Circular()
	out, done, err := openOutput()
	if err != nil {
		return outputError(err)
	}
	if err := outputCycles(out, cycles); err != nil {
		_ = done()
		return outputError(err)
	}
	if err := done(); err != nil {
		return outputError(err)
	}
	if len(cycles) > 0 {
		return fmt.Errorf("found %d circular dependency chain(s)", len(cycles))
	}
	return nil
}

// entryArg returns the positional entry, defaulting to the base dir.
func entryArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// warnToStderr surfaces build warnings for human-facing formats. JSON
// consumers read them from the payload instead.
func warnToStderr(res *depseeker.Result) {
	if flagFormat == "json" {
		return
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
