package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/onrus/powermax-logins/internal/domain"
)

// DefaultGlob matches the report files the collector writes.
const DefaultGlob = "logins-*.txt"

// ResolveInputs expands the given paths into the ordered list of report
// files to parse. Each entry may be a plain file, a directory (searched
// with DefaultGlob) or a glob pattern. With no entries, dir is searched
// with DefaultGlob; an empty dir means the current directory.
//
// Entries that resolve to nothing are warned about and skipped, keeping
// the rest of the run alive. The returned error is a *domain.NoInputError
// when nothing resolved at all, or a pattern syntax error.
func ResolveInputs(paths []string, dir string) ([]string, error) {
	if len(paths) == 0 {
		if dir == "" {
			dir = "."
		}
		paths = []string{filepath.Join(dir, DefaultGlob)}
	}

	var files []string
	for _, path := range paths {
		resolved, err := resolveOne(path)
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			notFound := &domain.PathNotFoundError{Path: path}
			log.Warn().Err(notFound).Msg("Skipping input path")
			continue
		}
		files = append(files, resolved...)
	}

	if len(files) == 0 {
		return nil, &domain.NoInputError{Patterns: paths}
	}
	return files, nil
}

func resolveOne(path string) ([]string, error) {
	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", path, err)
		}
		return matches, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil
	}
	if info.IsDir() {
		return filepath.Glob(filepath.Join(path, DefaultGlob))
	}
	return []string{path}, nil
}
