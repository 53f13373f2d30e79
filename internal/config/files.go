package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/varmotion/internal/documents"
	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/parser/asimonim"
	"bennypowers.dev/varmotion/internal/parser/common"
	"github.com/bmatcuk/doublestar/v4"
)

// File is a resolved file to load into the document manager
type File struct {
	Path    string
	Options asimonim.Options
}

// Files expands Styles and TokensFiles against root. Style files come first
// so token values override style declarations of the same name. Without
// configured token files, files matching AutoDiscoverPatterns are used along
// with any JSON or YAML file declaring a Design Tokens $schema.
func (c *Config) Files(root string) ([]File, error) {
	stylePatterns := c.Styles
	if len(stylePatterns) == 0 {
		stylePatterns = AutoDiscoverStylePatterns
	}
	styles, err := collect(root, stylePatterns)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, path := range styles {
		files = append(files, File{Path: path})
	}

	specs := c.TokensFiles
	autoDiscover := len(specs) == 0
	if autoDiscover {
		for _, pattern := range AutoDiscoverPatterns {
			specs = append(specs, TokenFileSpec{Path: pattern})
		}
	}

	seen := make(map[string]bool)
	for _, spec := range specs {
		matches, err := collect(root, []string{spec.Path})
		if err != nil {
			return nil, err
		}
		opts := c.TokenOptions(spec)
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			files = append(files, File{Path: path, Options: opts})
		}
	}

	if autoDiscover {
		schemaFiles, err := collectBySchema(root)
		if err != nil {
			return nil, err
		}
		for _, path := range schemaFiles {
			if !seen[path] {
				seen[path] = true
				files = append(files, File{Path: path, Options: c.TokenOptions(TokenFileSpec{})})
			}
		}
	}
	return files, nil
}

// collectBySchema finds JSON and YAML files under root that declare a Design
// Tokens $schema, whatever they are named
func collectBySchema(root string) ([]string, error) {
	candidates, err := collect(root, []string{"**/*.json", "**/*.yaml", "**/*.yml"})
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, path := range candidates {
		content, err := os.ReadFile(path) //nolint:gosec // G304: Reading workspace files - local trusted environment
		if err != nil {
			continue
		}
		if common.IsDesignTokensSchema(string(content)) {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

// TokenOptions merges per-file overrides with the global options
func (c *Config) TokenOptions(spec TokenFileSpec) asimonim.Options {
	opts := asimonim.Options{Prefix: c.Prefix, GroupMarkers: c.GroupMarkers}
	if spec.Prefix != "" {
		opts.Prefix = spec.Prefix
	}
	if len(spec.GroupMarkers) > 0 {
		opts.GroupMarkers = spec.GroupMarkers
	}
	return opts
}

// LoadInto loads every configured file into manager. Files that fail to load
// are reported together; the rest are still loaded.
func (c *Config) LoadInto(manager *documents.Manager, root string) error {
	files, err := c.Files(root)
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		if err := manager.LoadFile(file.Path, file.Options); err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s: %w", file.Path, err))
			continue
		}
		log.Debug("Loaded: %s", file.Path)
	}
	return errors.Join(errs...)
}

// collect walks root for files matching any pattern. A pattern without glob
// metacharacters names a file directly and is not subject to the skip rules.
func collect(root string, patterns []string) ([]string, error) {
	var matches []string
	var globs []string
	for _, pattern := range patterns {
		if filepath.IsAbs(pattern) || !hasMeta(pattern) {
			path := pattern
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
			}
			matches = append(matches, path)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad glob pattern %q", ErrInvalidConfig, pattern)
		}
		globs = append(globs, pattern)
	}

	if len(globs) > 0 {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // Skip errors, continue walking
			}
			if d.IsDir() {
				if path != root && shouldSkipDirectory(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if matchesAnyPattern(rel, globs) {
				matches = append(matches, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory: %w", err)
		}
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// shouldSkipDirectory reports hidden directories and common build and
// dependency directories
func shouldSkipDirectory(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains([]string{"node_modules", "dist", "build"}, name)
}

// matchesAnyPattern checks if a relative path matches any glob pattern.
// doublestar expects forward slashes on every platform.
func matchesAnyPattern(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}
