package storage

import (
	"context"
	"strings"
	"testing"

	customError "github.com/segyhp/school-portal/pkg/errors"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*FileStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewFileStore(fs, "/data", 16, []string{".pdf", ".png"}), fs
}

func TestFileStore_SaveOpenDelete(t *testing.T) {
	store, fs := newTestStore()
	ctx := context.Background()

	stored, err := store.Save(ctx, FolderDocuments, 7, "Kimlik.PDF", []byte("%PDF-1.4 test"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Path, "documents/7/"))
	assert.True(t, strings.HasSuffix(stored.Path, ".pdf"))
	assert.Equal(t, "Kimlik.PDF", stored.FileName)
	assert.Equal(t, "application/pdf", stored.ContentType)
	assert.Equal(t, int64(13), stored.Size)

	exists, err := afero.Exists(fs, "/data/"+stored.Path)
	require.NoError(t, err)
	assert.True(t, exists)

	data, contentType, err := store.Open(ctx, stored.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, store.Delete(ctx, stored.Path))
	require.NoError(t, store.Delete(ctx, stored.Path))

	_, _, err = store.Open(ctx, stored.Path)
	assert.Equal(t, customError.KindNotFound, customError.KindOf(err))
}

func TestFileStore_SaveRejects(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	tests := []struct {
		name     string
		fileName string
		data     []byte
	}{
		{"empty file", "a.pdf", nil},
		{"too large", "a.pdf", []byte(strings.Repeat("x", 17))},
		{"extension not allowed", "a.exe", []byte("MZ")},
		{"no extension", "README", []byte("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, FolderCertificates, 1, tt.fileName, tt.data)
			require.Error(t, err)
			assert.True(t, customError.Is(err, customError.ErrFileRejected))
		})
	}
}

func TestFileStore_RejectsPathsOutsideRoot(t *testing.T) {
	store, _ := newTestStore()

	for _, path := range []string{"", "../etc/passwd", "/etc/passwd"} {
		_, _, err := store.Open(context.Background(), path)
		assert.Equal(t, customError.KindValidation, customError.KindOf(err), path)
	}
}

func TestContentTypeFor_SniffsUnknownExtensions(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", ContentTypeFor(".bin", png))
	assert.Equal(t, "image/jpeg", ContentTypeFor(".jpeg", nil))
}
