package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a suite root indicator.
// Indicators are: the .otcheck directory or a .git directory.
// It returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".otcheck") || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
