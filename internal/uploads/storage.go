// Package uploads provides profile image upload handling.
package uploads

import (
	"context"
	"io"
)

// ObjectStore abstracts the object storage backend holding profile images.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	// PublicURL returns the browser-reachable URL for a stored object.
	PublicURL(key string) string
	// KeyFromURL maps a previously issued public URL back to its object key.
	KeyFromURL(url string) (string, bool)
}
