package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that leave the configured directory.
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator confines file access to a single directory tree
type PathValidator struct {
	dir     string // absolute, as configured
	realDir string // dir with symlinks resolved
}

// NewPathValidator creates a validator rooted at dir. The directory must exist.
func NewPathValidator(dir string) (*PathValidator, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access configured directory: %w", err)
	}
	info, err := os.Stat(realDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access configured directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("configured path is not a directory: %s", dir)
	}

	return &PathValidator{dir: filepath.Clean(absDir), realDir: realDir}, nil
}

// Directory returns the configured directory.
func (v *PathValidator) Directory() string {
	return v.dir
}

// Resolve returns the real location of path after checking that it stays
// inside the configured directory. Relative paths are taken from that
// directory. Both the cleaned path and its symlink target must be inside.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.dir, path)
	}
	cleanPath := filepath.Clean(path)

	if !within(cleanPath, v.dir) && !within(cleanPath, v.realDir) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	realPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if !within(realPath, v.realDir) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	return realPath, nil
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
