package tablesaf

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// DocumentItem is one document discovered by a traversal: its path relative
// to the traversal root and its raw bytes.
type DocumentItem struct {
	Path    string
	Content []byte
}

// FilesystemSourceConfig holds configuration for a FilesystemSource.
type FilesystemSourceConfig struct {
	// BaseDir is the base directory to traverse.
	BaseDir string

	// IncludePatterns is a list of glob patterns to include.
	// Files matching any include pattern will be processed.
	// If empty, all files are included (subject to exclude patterns).
	// Supports ** wildcards for recursive matching.
	IncludePatterns []string

	// ExcludePatterns is a list of glob patterns to exclude.
	// Files matching any exclude pattern will be skipped.
	// Default excludes are: .git/**
	// Supports ** wildcards for recursive matching.
	ExcludePatterns []string
}

// FilesystemSource traverses a local directory and yields document items.
type FilesystemSource struct {
	config FilesystemSourceConfig
	log    *zap.Logger
}

// NewFilesystemSource creates a new filesystem document source. A nil logger
// disables logging.
func NewFilesystemSource(config FilesystemSourceConfig, logger *zap.Logger) *FilesystemSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultExcludes := []string{".git/**"}
	config.ExcludePatterns = append(defaultExcludes, config.ExcludePatterns...)

	return &FilesystemSource{config: config, log: logger}
}

// Traverse walks the directory tree and yields items for all matching files.
// It returns a channel of DocumentItems and a channel for errors.
func (fs *FilesystemSource) Traverse(ctx context.Context) (<-chan DocumentItem, <-chan error) {
	items := make(chan DocumentItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		err := filepath.Walk(fs.config.BaseDir, func(path string, info os.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(fs.config.BaseDir, path)
			if err != nil {
				relPath = path
			}

			// Check exclude patterns first
			for _, pattern := range fs.config.ExcludePatterns {
				matched, err := doublestar.Match(pattern, relPath)
				if err != nil {
					fs.log.Warn("invalid exclude pattern",
						zap.String("pattern", pattern), zap.Error(err))
					continue
				}
				if matched {
					if info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			if len(fs.config.IncludePatterns) > 0 {
				included := false
				for _, pattern := range fs.config.IncludePatterns {
					matched, err := doublestar.Match(pattern, relPath)
					if err != nil {
						fs.log.Warn("invalid include pattern",
							zap.String("pattern", pattern), zap.Error(err))
						continue
					}
					if matched {
						included = true
						break
					}
				}
				if !included {
					if info.IsDir() {
						// A non-recursive pattern set cannot match deeper in
						// this directory.
						couldContainMatches := false
						for _, pattern := range fs.config.IncludePatterns {
							if strings.Contains(pattern, "**") {
								couldContainMatches = true
								break
							}
						}
						if !couldContainMatches {
							return filepath.SkipDir
						}
					}
					return nil
				}
			}

			if info.IsDir() {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				fs.log.Warn("failed to read file",
					zap.String("path", path), zap.Error(err))
				return nil
			}

			select {
			case items <- DocumentItem{Path: relPath, Content: content}:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return items, errs
}
