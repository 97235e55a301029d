package resolver

import (
	"os"
	"path/filepath"
)

// probeFn is a single filesystem probe strategy. It reports the resolved
// file path and whether the strategy matched.
type probeFn func(candidate string, exts []string) (string, bool)

// probeOrder fixes the strategy precedence: a candidate that already names
// a regular file wins untouched, then an index file inside a same-named
// directory, then the candidate with each configured extension appended.
// A directory with an index file therefore shadows a sibling file that
// only differs by an appended extension.
var probeOrder = []probeFn{probeExact, probeIndex, probeAppendExt}

// probe resolves candidate to an existing regular file by trying each
// strategy in order, stopping at the first match. exts carry a leading dot
// and their declared order is the probe order.
func probe(candidate string, exts []string) (string, bool) {
	for _, fn := range probeOrder {
		if path, ok := fn(candidate, exts); ok {
			return path, true
		}
	}
	return "", false
}

// probeExact matches a candidate that already names a regular file, such
// as a specifier written with its extension.
func probeExact(candidate string, _ []string) (string, bool) {
	if isRegularFile(candidate) {
		return candidate, true
	}
	return "", false
}

// probeIndex matches index.<ext> inside a directory named by candidate.
func probeIndex(candidate string, exts []string) (string, bool) {
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return "", false
	}
	for _, ext := range exts {
		index := filepath.Join(candidate, "index"+ext)
		if isRegularFile(index) {
			return index, true
		}
	}
	return "", false
}

// probeAppendExt matches candidate.<ext> for each configured extension.
func probeAppendExt(candidate string, exts []string) (string, bool) {
	for _, ext := range exts {
		path := candidate + ext
		if isRegularFile(path) {
			return path, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
