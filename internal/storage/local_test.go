package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngPayload = []byte("\x89PNG\r\n\x1a\n0000000000")

func newTestStore(t *testing.T) UploadStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("s1_3_100_me.png", pngPayload)
	require.NoError(t, err)
	assert.Equal(t, "s1_3_100_me.png", name)

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, pngPayload, data)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Remove("never-saved.png"))
}

func TestSave_RejectsOversized(t *testing.T) {
	store := newTestStore(t)

	payload := append(append([]byte{}, pngPayload...), bytes.Repeat([]byte{0}, MaxUploadBytes)...)
	_, err := store.Save("big.png", payload)
	assert.Error(t, err)
}

func TestSave_RejectsNonImage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("notes.txt", []byte("plain text payload"))
	assert.Error(t, err)
}

func TestSave_SanitizesTraversal(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("../../etc/passwd.png", pngPayload)
	require.NoError(t, err)
	assert.Equal(t, "passwd.png", name)
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.NoError(t, err)
}

func TestValidContentType(t *testing.T) {
	assert.True(t, ValidContentType(pngPayload))
	assert.False(t, ValidContentType([]byte("plain text payload")))
}
