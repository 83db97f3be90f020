package gallery

import (
	"context"
	"io"
)

// GalleryStore defines the interface for photo metadata and the banner
// carousel selection.
type GalleryStore interface {
	AddPhoto(key, uploader, uploaderName string) (*Photo, error)
	GetPhoto(key string) (*Photo, error)
	Photos() ([]Photo, error)
	DeletePhoto(key string) error

	// Banner carousel: an explicitly ordered subset of the gallery.
	Banner() ([]Photo, error)
	AddToBanner(photoKey string) error
	RemoveFromBanner(photoKey string) error
	ReorderBanner(photoKeys []string) error
}

// BlobStore abstracts the S3-compatible object storage holding the image
// bytes.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
