package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sokinpui/shgutter/internal/ui"
)

// ErrNoProjectFolder is returned for buffers that have no parent directory to run
// shellcheck in, such as unnamed buffers.
var ErrNoProjectFolder = errors.New("buffer has no project folder")

// ResolveProjectFolder returns the directory containing path. shellcheck runs there so
// that relative `source` directives resolve the way they do for the script itself.
func ResolveProjectFolder(path string) (string, error) {
	if path == "" {
		return "", ErrNoProjectFolder
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoProjectFolder, err)
	}
	dir := filepath.Dir(abs)
	if dir == abs {
		return "", ErrNoProjectFolder
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoProjectFolder, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNoProjectFolder, dir)
	}
	return dir, nil
}

// PathResolver finds absolute paths for files.
type PathResolver struct {
	lookupDirs []string
}

// NewPathResolver creates a new PathResolver.
func NewPathResolver(lookupDirs []string) *PathResolver {
	if len(lookupDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			// This is unlikely to fail, but if it does, it's a critical error.
			panic(fmt.Sprintf("could not get current working directory: %v", err))
		}
		return &PathResolver{lookupDirs: []string{wd}}
	}

	absDirs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			ui.Warning("Invalid lookup directory '%s', ignoring: %v", dir, err)
			continue
		}
		absDirs = append(absDirs, abs)
	}
	return &PathResolver{lookupDirs: absDirs}
}

// Resolve finds the script named by relativePath in the lookup directories.
// Absolute paths are returned as they are.
func (r *PathResolver) Resolve(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		if _, err := os.Stat(relativePath); err != nil {
			return "", err
		}
		return relativePath, nil
	}
	for _, dir := range r.lookupDirs {
		absPath := filepath.Join(dir, relativePath)
		if _, err := os.Stat(absPath); err == nil {
			return absPath, nil
		}
	}
	return "", fmt.Errorf("%s: %w", relativePath, os.ErrNotExist)
}
