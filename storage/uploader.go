// Package storage publishes generated files (schedules, charts, documents) under a public URL.
package storage

import (
	"context"
	"io"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePNG  = "image/png"
	ContentTypeJSON = "application/json"
)

type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL returns "" when the key can't be turned into a URL.
	GetPublicURL(key string) string
}
