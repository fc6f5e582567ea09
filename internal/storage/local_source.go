package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	apperrors "cloth-auth-go/internal/errors"
)

// LocalImageSource reads images from the local filesystem. This is the
// default source for registrations driven from the command line.
type LocalImageSource struct{}

// NewLocalImageSource creates a filesystem-backed image source.
func NewLocalImageSource() ImageSource {
	return &LocalImageSource{}
}

func (l *LocalImageSource) FetchImage(_ context.Context, path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDecodeError("could not read image file: "+path, err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError("image file is empty: "+path, nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("could not decode image: "+path, err)
	}
	return img, nil
}
