// Package paths provides working-directory validation shared across the backend.
//
// Session working directories must be absolute and must exist on disk before
// a shell process is spawned into them. Validation is a pure function of the
// path string plus a single stat call; callers receive a typed error they can
// surface unchanged to the tool caller.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// InvalidPathError reports a working directory that is not usable for a session.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// ValidateAbsolute checks that path is absolute and refers to an existing directory.
func ValidateAbsolute(path string) error {
	if path == "" {
		return &InvalidPathError{Path: path, Reason: "path is empty"}
	}
	if !filepath.IsAbs(path) {
		return &InvalidPathError{Path: path, Reason: "path must be absolute"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &InvalidPathError{Path: path, Reason: "directory does not exist"}
		}
		return &InvalidPathError{Path: path, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &InvalidPathError{Path: path, Reason: "path is not a directory"}
	}

	return nil
}
