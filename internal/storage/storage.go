// Package storage persists captured images and resolves their public URLs.
package storage

import (
	"context"
	"io"
)

// Storage abstracts the object store. Save returns a publicly resolvable URL
// for the stored object; key is the object's path inside the store.
type Storage interface {
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)
}
