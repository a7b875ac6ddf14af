package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("storage: invalid object key")

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock

// BlobStore persists binary objects under a key and hands back a publicly
// retrievable URL.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
