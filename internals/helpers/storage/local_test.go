package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir(), "http://files.test/")
	require.NoError(t, err)

	require.NoError(t, PutBytes(ctx, s, "teams/a/works/w.zip", []byte("zip"), "application/zip"))
	require.NoError(t, PutBytes(ctx, s, "certificate/2025/01/c.pdf", []byte("pdf"), "application/pdf"))

	data, err := ReadAll(ctx, s, "teams/a/works/w.zip")
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
	assert.Equal(t, "http://files.test/teams/a/works/w.zip", s.URL("teams/a/works/w.zip"))
	assert.Equal(t, "", s.URL(""))

	objs, err := s.List(ctx, "certificate/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "certificate/2025/01/c.pdf", objs[0].Key)
	assert.EqualValues(t, 3, objs[0].Size)

	require.NoError(t, s.Delete(ctx, "teams/a/works/w.zip"))
	_, err = s.Get(ctx, "teams/a/works/w.zip")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "teams/a/works/w.zip"), ErrNotFound)
}

func TestLocalStoreKeepsKeysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStore(filepath.Join(root, "store"), "")
	require.NoError(t, err)

	require.NoError(t, PutBytes(ctx, s, "../../escape.txt", []byte("x"), "text/plain"))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "store", "escape.txt"))
	assert.NoError(t, err)

	assert.Error(t, PutBytes(ctx, s, "/", []byte("x"), "text/plain"))
}

func TestDeleteQuietlySkipsEmptyAndMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, PutBytes(ctx, s, "a/b.txt", []byte("x"), "text/plain"))

	DeleteQuietly(ctx, s, "", "a/b.txt", "a/missing.txt")
	objs, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	at := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "certificate/2025/03/"+id.String()+".png", CertificateKey(id, ".PNG", at))

	works := TeamFileKey(id, "works", "Final.ZIP")
	assert.True(t, strings.HasPrefix(works, "teams/"+id.String()+"/works/"), works)
	assert.True(t, strings.HasSuffix(works, ".zip"), works)
	assert.NotEqual(t, works, TeamFileKey(id, "works", "Final.ZIP"))

	scan := ApplicationKey(id, "scan.PDF")
	assert.True(t, strings.HasPrefix(scan, "applications/"+id.String()+"/"), scan)
	assert.True(t, strings.HasSuffix(scan, ".pdf"), scan)
	assert.NotEqual(t, scan, ApplicationKey(id, "scan.PDF"))
}

func TestNormalizeImagePassesPDFThrough(t *testing.T) {
	in := []byte("%PDF-1.4 scan")
	out, ext, ctype, err := NormalizeImage(in, "Scan.PDF", DefaultWebPOptions())
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, ".pdf", ext)
	assert.Equal(t, "application/pdf", ctype)
}
