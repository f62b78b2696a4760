package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// dirUploader keeps exports on the local disk. The server serves Root under PublicBaseURL
// when no bucket is configured.
type dirUploader struct {
	root          string
	publicBaseURL string
}

func NewDirUploader(root, publicBaseURL string) (FileUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &dirUploader{root: root, publicBaseURL: publicBaseURL}, nil
}

func (u *dirUploader) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(u.root, clean), nil
}

func (u *dirUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := u.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to store object (key: %s): %w", key, err)
	}
	sum := md5.New()
	if _, err := io.Copy(io.MultiWriter(f, sum), reader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to store object (key: %s): %w", key, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to store object (key: %s): %w", key, err)
	}
	return &UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: hex.EncodeToString(sum.Sum(nil))}, nil
}

func (u *dirUploader) Delete(ctx context.Context, key string) error {
	path, err := u.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object (key: %s): %w", key, err)
	}
	return nil
}

func (u *dirUploader) GetPublicURL(key string) string {
	return publicURL(u.publicBaseURL, key)
}
