package storage

import "context"

// Object is a generated document to publish, such as a ladder snapshot.
type Object struct {
	Key         string
	ContentType string
	// CacheControl is sent as-is. Snapshots keyed by event never change, the
	// latest pointer is overwritten on every rank swap.
	CacheControl string
	Body         []byte
}

// StoredObject describes an object after it was written.
type StoredObject struct {
	Key  string
	URL  string
	Size int
}

type FileUploader interface {
	Upload(ctx context.Context, obj Object) (*StoredObject, error)
	PublicURL(key string) string
}
