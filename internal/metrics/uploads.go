package metrics

import (
	"context"
	"io"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
)

type instrumentedUploader struct {
	next storage.Uploader
	m    *Metrics
}

// InstrumentUploader counts upload outcomes per bucket.
func (m *Metrics) InstrumentUploader(next storage.Uploader) storage.Uploader {
	return &instrumentedUploader{next: next, m: m}
}

func (u *instrumentedUploader) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (string, error) {
	url, err := u.next.Upload(ctx, bucket, objectPath, body, contentType)
	u.m.Upload(bucket, err == nil)
	return url, err
}
