package storage

import "io"

// BlobStore persists uploaded materials and generated exam documents under
// opaque keys ("courses/<id>/materials/<uuid>.pdf").
type BlobStore interface {
	Put(key string, r io.Reader) (int64, error)
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	// Abs returns a filesystem path for key when the store is file backed,
	// so the PDF pipeline can read and write documents in place.
	Abs(key string) (string, error)
}
