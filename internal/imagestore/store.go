package imagestore

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5_000_000

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
)

var (
	imageExtRX  = regexp.MustCompile(`^\.(jpe?g|png)$`)
	imageMimeRX = regexp.MustCompile(`^image/(jpe?g|png)$`)
)

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists uploaded images and returns the reference saved on the blog record.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Validate accepts JPEG and PNG images up to MaxImageSize. The extension, the declared
// content type and the decoded header must all agree.
func Validate(u *Upload) error {
	if len(u.Data) > MaxImageSize {
		return ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !imageExtRX.MatchString(ext) || !imageMimeRX.MatchString(strings.ToLower(u.ContentType)) {
		return ErrUnsupportedImage
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil {
		return ErrUnsupportedImage
	}

	switch format {
	case "jpeg", "png":
		return nil
	default:
		return ErrUnsupportedImage
	}
}

// BlogImageKey names a new blog image object, keeping the client's extension.
func BlogImageKey(filename string) string {
	return "blogs/blog-" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
