package storage

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// FSStore is a filesystem-backed ObjectStore. Objects live under the
// bucket directory and are served publicly under the base URL.
type FSStore struct {
	bucket  string
	baseURL string
}

// NewFSStore builds the store; EnsureBucket must run before first Save.
func NewFSStore(bucket, publicBaseURL string) *FSStore {
	return &FSStore{bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// EnsureBucket idempotently creates the bucket directory.
func (s *FSStore) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(s.bucket, 0o755)
}

// Save writes the object under a unique name: ULID plus the original
// extension.
func (s *FSStore) Save(_ context.Context, originalName string, r io.Reader) (*StoredObject, error) {
	name := ulid.MustNew(ulid.Now(), rand.Reader).String() + strings.ToLower(filepath.Ext(originalName))

	fullPath := filepath.Join(s.bucket, name)
	f, err := os.Create(fullPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return nil, err
	}

	return &StoredObject{
		Path: name,
		URL:  s.baseURL + "/" + name,
	}, nil
}

// Open reads back a stored object by path.
func (s *FSStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.bucket, filepath.Base(path)))
}

// Dir returns the bucket directory, used to mount the static file route.
func (s *FSStore) Dir() string {
	return s.bucket
}
