// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/pkg/types"
)

func TestInitCreatesSkeleton(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(Config{Dir: dir, Logger: zerolog.Nop()}, "smoking-cessation")
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "smoking-cessation", p.Settings.ProjectName)
	for _, sub := range []string{"data/search", "data/pdfs"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	_, err = os.Stat(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)

	commits, err := p.Store.Commits()
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Initialize project", commits[0].Message)
}

func TestInitRefusesExistingProject(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(Config{Dir: dir, Logger: zerolog.Nop()}, "one")
	require.NoError(t, err)
	p.Close()

	_, err = Init(Config{Dir: dir, Logger: zerolog.Nop()}, "two")
	assert.Error(t, err)
}

func TestInitDefaultsNameToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diabetes-review")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p, err := Init(Config{Dir: dir, Logger: zerolog.Nop()}, "")
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "diabetes-review", p.Settings.ProjectName)
}

func TestOpenRoundtrip(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(Config{Dir: dir, Logger: zerolog.Nop()}, "roundtrip")
	require.NoError(t, err)

	p.Settings.Sources = append(p.Settings.Sources, types.Source{
		Platform:    "pubmed",
		ResultsPath: "data/search/pubmed.bib",
		SearchType:  types.SearchTypeAPI,
		Query:       "diabetes",
	})
	require.NoError(t, p.SaveSettings())
	p.Close()

	reopened, err := Open(Config{Dir: dir, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "roundtrip", reopened.Settings.ProjectName)
	require.Len(t, reopened.Settings.Sources, 1)
	assert.Equal(t, "pubmed", reopened.Settings.Sources[0].Platform)
}

func TestOpenMissingProject(t *testing.T) {
	_, err := Open(Config{Dir: t.TempDir(), Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestOpenSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(Config{Dir: dir, Backend: BackendSQLite, Logger: zerolog.Nop()}, "sqlite-backed")
	require.NoError(t, err)
	p.Close()

	reopened, err := Open(Config{Dir: dir, Backend: BackendSQLite, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer reopened.Close()

	recs, err := reopened.Store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}
