package storage

import (
	"context"
	"io"
	"mime/multipart"
	"strings"
)

type Uploader interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (string, error)
}

var _ Uploader = (*Client)(nil)

// File is an upload that has not been read yet.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func FromMultipart(h *multipart.FileHeader) File {
	return File{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// FromReader wraps an in-memory body, mostly for tests and scripts.
func FromReader(name, contentType, body string) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

// Put opens f and uploads it under prefix with a collision-free name.
func Put(ctx context.Context, u Uploader, bucket, prefix string, f File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", err
	}
	defer body.Close()
	return u.Upload(ctx, bucket, ObjectPath(prefix, f.Name), body, f.ContentType)
}
