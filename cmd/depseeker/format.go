package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/NorthSeacoder/depseeker"
)

var validFormats = []string{"json", "text", "dot"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// openOutput returns the stream rendered output goes to, honoring
// --output, plus a close func. The close error matters for files: a
// failed flush on close is the last chance to notice a short write.
func openOutput() (io.Writer, func() error, error) {
	if flagOutput == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(flagOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("create output %s: %w", flagOutput, err)
	}
	return f, func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output %s: %w", flagOutput, err)
		}
		return nil
	}, nil
}

func outputGraph(w io.Writer, res *depseeker.Result) error {
	switch flagFormat {
	case "text":
		formatGraphText(w, res)
		return nil
	case "dot":
		return res.DOT(w)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}

func formatGraphText(w io.Writer, res *depseeker.Result) {
	files := make([]string, 0, len(res.Graph))
	for file := range res.Graph {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintln(w, file)
		for _, dep := range res.Graph[file] {
			fmt.Fprintf(w, "  -> %s\n", dep)
		}
	}
	fmt.Fprintf(w, "\n%d file(s)\n", len(res.Files))
}

type cycleList struct {
	Cycles [][]string `json:"cycles"`
	Count  int        `json:"count"`
}

func outputCycles(w io.Writer, cycles [][]string) error {
	switch flagFormat {
	case "text":
		formatCyclesText(w, cycles)
		return nil
	case "dot":
		return fmt.Errorf("dot format does not apply to circular output")
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cycleList{Cycles: cycles, Count: len(cycles)})
	}
}

func formatCyclesText(w io.Writer, cycles [][]string) {
	if len(cycles) == 0 {
		fmt.Fprintln(w, "No circular dependencies found.")
		return
	}
	for i, cycle := range cycles {
		fmt.Fprintf(w, "%d) %s\n", i+1, strings.Join(cycle, " -> "))
	}
}

// outputError emits a JSON error envelope when the caller asked for
// JSON, so scripted consumers always get parseable output. The error
// still propagates for the exit status.
func outputError(err error) error {
	if flagFormat == "json" {
		errorHandled = true
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]string{"error": err.Error()})
	}
	return err
}
