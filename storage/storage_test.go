package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"contract-backend/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStoragePath(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")

	path := generateStoragePath(id, "Contrat de bail.PDF")
	assert.Equal(t, "contracts/3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_Contrat_de_bail.pdf", path)

	path = generateStoragePath(id, "../../etc/passwd")
	assert.True(t, strings.HasPrefix(path, "contracts/3f/"))
	assert.NotContains(t, path, "..")

	path = generateStoragePath(id, ".txt")
	assert.Equal(t, "contracts/3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_contrat.txt", path)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
	assert.Equal(t, "application/pdf", ContentType("A.PDF"))
	assert.Equal(t, "text/plain", ContentType("a.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("a.exe"))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	path, err := store.Upload(ctx, id, "cdi.txt", strings.NewReader("Article 1 - Objet"))
	require.NoError(t, err)

	reader, err := store.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, reader.Close())
	require.NoError(t, err)
	assert.Equal(t, "Article 1 - Objet", string(data))

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Download(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, path))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.StorageConfig{Type: "s3"})
	assert.Error(t, err)
}
