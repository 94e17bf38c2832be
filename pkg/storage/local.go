package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore abstracts where uploaded file bodies live. The rest of the app
// only ever sees opaque storage keys.
type BlobStore interface {
	Save(originalName string, data []byte) (key string, err error)
	Read(key string) ([]byte, error)
	Delete(key string) error
	DownloadURL(key string) string
}

// LocalBlobStore keeps blobs on the local disk under a single directory and
// serves them through the static file route.
type LocalBlobStore struct {
	dir       string
	publicURL string
}

var _ BlobStore = &LocalBlobStore{}

func NewLocalBlobStore(dir, publicURL string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBlobStore{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Save writes the blob under a random key. The original extension is kept so
// the static route serves a sensible content type.
func (s *LocalBlobStore) Save(originalName string, data []byte) (string, error) {
	ext := filepath.Ext(originalName)
	key := uuid.NewString() + ext

	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return key, nil
}

func (s *LocalBlobStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalBlobStore) Delete(key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalBlobStore) DownloadURL(key string) string {
	return s.publicURL + "/" + key
}
