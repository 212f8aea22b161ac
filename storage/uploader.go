// Package storage puts uploaded files somewhere public and returns their URL.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes caps proof and gallery uploads.
const MaxImageBytes = 10 << 20

var (
	// ErrNotImage is returned when the upload is not one of the allowed image types.
	ErrNotImage = errors.New("storage: file is not an allowed image")
	// ErrTooLarge is returned when the upload exceeds MaxImageBytes.
	ErrTooLarge = errors.New("storage: file too large")
)

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// Uploader stores an object and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Image is a validated image read fully into memory.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ReadImage reads up to MaxImageBytes from r and checks the content type by sniffing.
func ReadImage(r io.Reader) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	ext, ok := allowedImages[mt.String()]
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	return Image{ContentType: mt.String(), Ext: ext, Data: data}, nil
}

// ObjectName builds a unique, date-partitioned object path under prefix.
func ObjectName(prefix, ext string, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}

// UploadImage validates r as an image and stores it under prefix.
func UploadImage(ctx context.Context, up Uploader, prefix string, r io.Reader) (string, error) {
	img, err := ReadImage(r)
	if err != nil {
		return "", err
	}
	name := ObjectName(prefix, img.Ext, time.Now())
	return up.Upload(ctx, name, img.ContentType, bytes.NewReader(img.Data))
}
