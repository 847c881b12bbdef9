// Package storage puts uploaded files into a blob store and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/config"
)

// Store accepts a file and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MaxImageSize caps a single uploaded image.
const MaxImageSize = 10 << 20

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Store(ctx, S3Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region, PublicURL: cfg.S3PublicURL})
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket)
	default:
		return NewLocalStore(cfg.UploadsDir, cfg.UploadsURL)
	}
}

// ObjectKey names an upload under prefix, keeping only the file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// PutImage validates an uploaded image and stores it under prefix.
func PutImage(ctx context.Context, s Store, prefix string, fh *multipart.FileHeader) (key, url string, err error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", "", apperr.Validation("unsupported image type %q", ext)
	}
	if fh.Size > MaxImageSize {
		return "", "", apperr.Validation("image is larger than %d MB", MaxImageSize>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key = ObjectKey(prefix, fh.Filename)
	url, err = s.Put(ctx, key, f, contentType)
	if err != nil {
		return "", "", fmt.Errorf("store %s: %w", key, err)
	}
	return key, url, nil
}
