// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project holds the explicit project context passed into every
// engine call: the settings, the durable store handle, and the logger.
// There is no module-level mutable state; a caller owning two projects
// holds two contexts.
// See docs/ARCHITECTURE § Project Context.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/internal/store"
	"github.com/pdiddy/review-engine/pkg/types"
)

const settingsFile = "settings.yaml"

// Backend selects the durable store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Config carries the options needed to open a project.
type Config struct {
	// Dir is the project root directory.
	Dir string

	// Backend selects the store implementation (default: file).
	Backend Backend

	// Logger receives engine log output.
	Logger zerolog.Logger
}

// Project is the context object for one review project.
type Project struct {
	Dir      string
	Settings *types.Settings
	Store    store.Store
	Log      zerolog.Logger
}

// openStore constructs the configured store backend rooted at the
// project's data directory.
func openStore(cfg Config) (store.Store, error) {
	dataDir := filepath.Join(cfg.Dir, "data")
	switch cfg.Backend {
	case BackendSQLite:
		return store.NewSQLiteStore(dataDir)
	case BackendFile, "":
		return store.NewFileStore(dataDir)
	default:
		return nil, &types.InvalidParameterError{
			Param:   "backend",
			Message: fmt.Sprintf("unknown store backend %q", cfg.Backend),
		}
	}
}

// Open loads an existing project: settings.yaml must be present.
func Open(cfg Config) (*Project, error) {
	settingsPath := filepath.Join(cfg.Dir, settingsFile)
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", settingsPath, err)
	}
	var settings types.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", settingsPath, err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Project{
		Dir:      cfg.Dir,
		Settings: &settings,
		Store:    st,
		Log:      cfg.Logger.With().Str("project", settings.ProjectName).Logger(),
	}, nil
}

// Init creates the project skeleton (settings.yaml, data/search,
// data/pdfs) and records the initial commit. It fails if the project is
// already initialized.
func Init(cfg Config, name string) (*Project, error) {
	if name == "" {
		abs, err := filepath.Abs(cfg.Dir)
		if err != nil {
			return nil, err
		}
		name = filepath.Base(abs)
	}
	settingsPath := filepath.Join(cfg.Dir, settingsFile)
	if _, err := os.Stat(settingsPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", settingsPath)
	}

	for _, dir := range []string{
		filepath.Join(cfg.Dir, "data", "search"),
		filepath.Join(cfg.Dir, "data", "pdfs"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	p := &Project{
		Dir:      cfg.Dir,
		Settings: &types.Settings{ProjectName: name},
		Log:      cfg.Logger.With().Str("project", name).Logger(),
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	p.Store = st

	if err := p.SaveSettings(); err != nil {
		return nil, err
	}
	if err := p.Store.Save(map[string]*types.Record{}, false); err != nil {
		return nil, err
	}
	if _, err := p.Store.Commit("Initialize project"); err != nil {
		return nil, err
	}
	p.Log.Info().Str("dir", cfg.Dir).Msg("project initialized")
	return p, nil
}

// SaveSettings writes settings.yaml atomically.
func (p *Project) SaveSettings() error {
	data, err := yaml.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	path := filepath.Join(p.Dir, settingsFile)
	tmp, err := os.CreateTemp(p.Dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing settings: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming settings: %w", err)
	}
	return nil
}

// SearchDir returns the directory holding search results and run
// history files.
func (p *Project) SearchDir() string {
	return filepath.Join(p.Dir, "data", "search")
}

// PDFDir returns the directory holding retrieved PDF documents.
func (p *Project) PDFDir() string {
	return filepath.Join(p.Dir, "data", "pdfs")
}

// Abs resolves a project-relative path.
func (p *Project) Abs(rel string) string {
	return filepath.Join(p.Dir, rel)
}

// Close releases the store.
func (p *Project) Close() error {
	return p.Store.Close()
}
