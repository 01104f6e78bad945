package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	customError "github.com/segyhp/school-portal/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Folders files are grouped under.
const (
	FolderDocuments    = "documents"
	FolderCertificates = "certificates"
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain; charset=utf-8",
}

// Stored describes a file written by Save.
type Stored struct {
	Path        string // relative to the store root
	FileName    string // original name
	ContentType string
	Size        int64
}

// FileStore keeps uploaded files under <root>/<folder>/<studentID>/<uuid><ext>.
type FileStore struct {
	fs       afero.Fs
	root     string
	maxBytes int64
	allowed  map[string]bool
}

func NewFileStore(fs afero.Fs, root string, maxBytes int64, allowedExtensions []string) *FileStore {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &FileStore{fs: fs, root: root, maxBytes: maxBytes, allowed: allowed}
}

// NewOSFileStore stores files on the local disk.
func NewOSFileStore(root string, maxBytes int64, allowedExtensions []string) *FileStore {
	return NewFileStore(afero.NewOsFs(), root, maxBytes, allowedExtensions)
}

// Save validates and writes data, returning where it was stored.
func (s *FileStore) Save(ctx context.Context, folder string, studentID int64, fileName string, data []byte) (*Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, customError.WrapFileRejected("Dosya boş olamaz")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, customError.WrapFileRejected(fmt.Sprintf("Dosya boyutu en fazla %d bayt olabilir", s.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || !s.allowed[ext] {
		return nil, customError.WrapFileRejected(fmt.Sprintf("Dosya türüne izin verilmiyor: %s", ext))
	}

	rel := filepath.Join(folder, strconv.FormatInt(studentID, 10), uuid.NewString()+ext)
	full := filepath.Join(s.root, rel)

	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, customError.WrapStorageError(err)
	}
	if err := afero.WriteFile(s.fs, full, data, 0o644); err != nil {
		return nil, customError.WrapStorageError(err)
	}

	return &Stored{
		Path:        filepath.ToSlash(rel),
		FileName:    filepath.Base(fileName),
		ContentType: ContentTypeFor(ext, data),
		Size:        int64(len(data)),
	}, nil
}

// Open reads a stored file and resolves its content type.
func (s *FileStore) Open(ctx context.Context, path string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, "", err
	}

	data, err := afero.ReadFile(s.fs, full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", customError.WrapNotFound("Dosya", path)
		}
		return nil, "", customError.WrapStorageError(err)
	}

	return data, ContentTypeFor(strings.ToLower(filepath.Ext(full)), data), nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *FileStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(full); err != nil && !os.IsNotExist(err) {
		return customError.WrapStorageError(err)
	}
	return nil
}

// resolve maps a stored relative path to a path under root.
func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if path == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", customError.WrapValidation("Geçersiz dosya yolu")
	}
	return filepath.Join(s.root, clean), nil
}

// ContentTypeFor looks the extension up and falls back to sniffing data.
func ContentTypeFor(ext string, data []byte) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return mimetype.Detect(data).String()
}
