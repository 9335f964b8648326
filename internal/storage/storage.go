package storage

import (
	"context"
	"io"
)

// StoredObject is the result of a successful upload.
type StoredObject struct {
	Path string
	URL  string
}

// ObjectStore persists attachment binaries. Save assigns the object a
// collision-resistant name; provider errors surface unchanged and there
// is no retry policy.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Save(ctx context.Context, originalName string, r io.Reader) (*StoredObject, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// UploadKind caps a named upload route.
type UploadKind struct {
	Name     string
	MaxBytes int64
}

// Upload routes accept one file each, capped per kind.
var UploadKinds = map[string]UploadKind{
	"image": {Name: "image", MaxBytes: 4 << 20},
	"pdf":   {Name: "pdf", MaxBytes: 8 << 20},
	"text":  {Name: "text", MaxBytes: 1 << 20},
}

// KindFor resolves an upload route name.
func KindFor(name string) (UploadKind, bool) {
	kind, ok := UploadKinds[name]
	return kind, ok
}
