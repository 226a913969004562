// Package storage saves uploaded product images on local disk.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"vapestore-pos/internal/apperror"
)

// maxImageBytes caps a decoded upload
const maxImageBytes = 5 << 20

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Uploader stores a blob and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, data, fileName string) (string, error)
}

type diskUploader struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewDiskUploader writes files under dir and serves them from baseURL + "/uploads/"
func NewDiskUploader(dir, baseURL string) Uploader {
	return &diskUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Upload accepts raw base64 or a data URL
func (u *diskUploader) Upload(ctx context.Context, data, fileName string) (string, error) {
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	if data == "" {
		return "", apperror.NewValidation("image data is required")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", apperror.NewValidation("image data is not valid base64")
	}
	if len(raw) > maxImageBytes {
		return "", apperror.NewValidation("image exceeds 5 MB")
	}

	name := unsafeChars.ReplaceAllString(filepath.Base(fileName), "_")
	if name == "" || name == "." || name == "_" {
		name = "image"
	}
	// Timestamp prefix to prevent collisions
	name = fmt.Sprintf("%d_%s", u.now().UnixNano(), name)

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", apperror.NewIntegrity(err)
	}
	if err := os.WriteFile(filepath.Join(u.dir, name), raw, 0o644); err != nil {
		return "", apperror.NewIntegrity(err)
	}

	return u.baseURL + "/uploads/" + name, nil
}
