// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/pkg/types"
)

func rec(id string, status types.Status) *types.Record {
	return &types.Record{
		ID:     id,
		Status: status,
		Origin: []string{"test.bib/" + id},
		Fields: map[string]string{types.FieldTitle: "Title " + id},
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(map[string]*types.Record{
		"a": rec("a", types.StatusMdImported),
		"b": rec("b", types.StatusMdRetrieved),
	}, false))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, types.StatusMdImported, loaded["a"].Status)
	assert.Equal(t, []string{"test.bib/b"}, loaded["b"].Origin)

	// Snapshots must be isolated from the store.
	loaded["a"].Status = types.StatusRevIncluded
	again, err := s.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, types.StatusMdImported, again["a"].Status)
}

func TestFileStorePartialSave(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(map[string]*types.Record{
		"a": rec("a", types.StatusMdImported),
		"b": rec("b", types.StatusMdImported),
	}, false))

	updated := rec("a", types.StatusMdPrepared)
	require.NoError(t, s.Save(map[string]*types.Record{"a": updated}, true))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, types.StatusMdPrepared, loaded["a"].Status)
	assert.Equal(t, types.StatusMdImported, loaded["b"].Status)

	// A full save replaces the set.
	require.NoError(t, s.Save(map[string]*types.Record{"a": updated}, false))
	loaded, err = s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestFileStoreCounters(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	c, err := s.Counters()
	require.NoError(t, err)
	assert.Zero(t, c.DuplicatesRemoved)

	c.DuplicatesRemoved = 3
	require.NoError(t, s.SetCounters(c))

	c, err = s.Counters()
	require.NoError(t, err)
	assert.Equal(t, 3, c.DuplicatesRemoved)
}

func TestFileStoreHasChanges(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	// Empty store, nothing committed, nothing written.
	changed, err := s.HasChanges()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, s.Save(map[string]*types.Record{"a": rec("a", types.StatusMdRetrieved)}, false))
	changed, err = s.HasChanges()
	require.NoError(t, err)
	assert.True(t, changed, "uncommitted save should report changes")

	commit, err := s.Commit("Import a")
	require.NoError(t, err)
	assert.NotEmpty(t, commit.ID)
	assert.NotEmpty(t, commit.Checksum)

	changed, err = s.HasChanges()
	require.NoError(t, err)
	assert.False(t, changed, "committed state should report clean")

	require.NoError(t, s.Save(map[string]*types.Record{"a": rec("a", types.StatusMdImported)}, true))
	changed, err = s.HasChanges()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestFileStoreCommitLog(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(map[string]*types.Record{"a": rec("a", types.StatusMdRetrieved)}, false))
	_, err = s.Commit("first")
	require.NoError(t, err)
	require.NoError(t, s.Save(map[string]*types.Record{"a": rec("a", types.StatusMdImported)}, true))
	_, err = s.Commit("second")
	require.NoError(t, err)

	commits, err := s.Commits()
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "first", commits[0].Message)
	assert.Equal(t, "second", commits[1].Message)
	assert.NotEqual(t, commits[0].Checksum, commits[1].Checksum)
}
