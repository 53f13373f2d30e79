// Package commands implements the varmotion command line
package commands

import (
	"fmt"
	"path/filepath"

	"bennypowers.dev/varmotion/internal/config"
	"bennypowers.dev/varmotion/internal/documents"
	"bennypowers.dev/varmotion/internal/log"
	"bennypowers.dev/varmotion/internal/style"
)

// workspace is a loaded project: its configuration, documents and the
// style source animations read from
type workspace struct {
	root       string
	configPath string
	config     *config.Config
	manager    *documents.Manager
	source     style.Source
}

// loadWorkspace reads the configuration at configPath, or discovers it under
// root when configPath is empty, and loads every configured file plus any
// extra files named on the command line.
func loadWorkspace(root, configPath string, extra []string) (*workspace, error) {
	if root == "" {
		root = "."
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, configPath, err = config.Discover(root)
	}
	if err != nil {
		return nil, err
	}

	if cfg.LogLevel != "" && log.GetLevel() != log.LevelDebug {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		log.SetLevel(level)
	}

	manager := documents.NewManager()
	if err := cfg.LoadInto(manager, root); err != nil {
		return nil, err
	}
	for _, path := range extra {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if err := manager.LoadFile(path, cfg.TokenOptions(config.TokenFileSpec{})); err != nil {
			return nil, err
		}
	}

	ws := &workspace{
		root:       root,
		configPath: configPath,
		config:     cfg,
		manager:    manager,
		source:     manager,
	}
	if len(cfg.Properties) > 0 {
		ws.source = style.Layered{style.NewMapSource(cfg.Properties), manager}
	}

	log.Debug("Loaded %d documents from %s", len(manager.Paths()), root)
	return ws, nil
}
