package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0644))
	}
	return dir
}

func TestFileDocumentStore_List(t *testing.T) {
	dir := newDocumentsDir(t, "b.pdf", "a.pdf", "notes.txt")
	store := NewFileDocumentStore(dir, NewPDFService(DefaultDocumentServiceConfig))

	documents, err := store.List()

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, documents)
}

func TestFileDocumentStore_PathResolvesWithAndWithoutExtension(t *testing.T) {
	dir := newDocumentsDir(t, "manual.pdf")
	store := NewFileDocumentStore(dir, NewPDFService(DefaultDocumentServiceConfig))

	path, err := store.Path("manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manual.pdf"), path)

	path, err = store.Path("manual")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manual.pdf"), path)
}

func TestFileDocumentStore_PathResolvesTimestampedUploads(t *testing.T) {
	dir := newDocumentsDir(t, "manual_1712345678.pdf")
	store := NewFileDocumentStore(dir, NewPDFService(DefaultDocumentServiceConfig))

	path, err := store.Path("manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manual_1712345678.pdf"), path)
}

func TestFileDocumentStore_MissingDocument(t *testing.T) {
	dir := newDocumentsDir(t)
	store := NewFileDocumentStore(dir, NewPDFService(DefaultDocumentServiceConfig))

	_, err := store.Path("nope.pdf")
	assert.Error(t, err)
	assert.False(t, store.Exists("nope.pdf"))
}

func TestFileDocumentStore_IgnoresDirectoryTraversal(t *testing.T) {
	dir := newDocumentsDir(t, "manual.pdf")
	store := NewFileDocumentStore(dir, NewPDFService(DefaultDocumentServiceConfig))

	path, err := store.Path("../manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manual.pdf"), path)
}
