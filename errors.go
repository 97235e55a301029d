package depseeker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned by BuildGraph when the requested entry is unusable.
var (
	// ErrInvalidEntry means the entry path does not exist or is neither
	// a regular file nor a directory.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrEntryExcluded means an explicitly requested entry file is
	// rejected by the engine's configuration: its extension is not in
	// the configured set, or an exclude filter matches it.
	ErrEntryExcluded = errors.New("entry excluded by configuration")
)

// WarningKind labels the failure class a Warning reports.
type WarningKind string

const (
	// WarningConfig reports an alias configuration that could not be
	// loaded. The build proceeded with an empty alias table.
	WarningConfig WarningKind = "config"
	// WarningFileRead reports a file that could not be read. The file
	// appears in the graph with no dependencies.
	WarningFileRead WarningKind = "file-read"
	// WarningParse reports a file that could not be parsed. The file
	// appears in the graph with no dependencies.
	WarningParse WarningKind = "parse"
)

// Warning is a non-fatal failure encountered during a build. Path is
// relative to the base directory, except for WarningConfig where it is
// the resolved configuration path.
type Warning struct {
	Kind WarningKind
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %v", w.Kind, w.Path, w.Err)
}

// MarshalJSON flattens the wrapped error to its message so warnings
// survive serialization.
func (w Warning) MarshalJSON() ([]byte, error) {
	var msg string
	if w.Err != nil {
		msg = w.Err.Error()
	}
	return json.Marshal(struct {
		Kind  WarningKind `json:"kind"`
		Path  string      `json:"path"`
		Error string      `json:"error,omitempty"`
	}{Kind: w.Kind, Path: w.Path, Error: msg})
}
