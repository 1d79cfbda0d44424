// Package storage holds the file-storage collaborator used for certificate
// images and team uploads, with a local-disk driver and an Aliyun OSS driver.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"compaward_backend/internals/configs"
)

var ErrNotFound = errors.New("storage: object not found")

type ObjectInfo struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	URL(key string) string
}

// NewFromConfig picks the driver named by STORAGE_DRIVER.
func NewFromConfig() (BlobStore, error) {
	switch configs.StorageDriver {
	case "oss":
		return NewOSSStoreFromEnv(configs.GetEnv("ALI_OSS_PREFIX"))
	case "", "local":
		return NewLocalStore(configs.UploadDir, configs.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", configs.StorageDriver)
	}
}

// ReadAll loads an object fully; certificate and works files are bounded by the upload limit.
func ReadAll(ctx context.Context, s BlobStore, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func PutBytes(ctx context.Context, s BlobStore, key string, data []byte, contentType string) error {
	return s.Put(ctx, key, bytes.NewReader(data), contentType)
}

// DeleteQuietly removes keys and only logs failures. Used after commit.
func DeleteQuietly(ctx context.Context, s BlobStore, keys ...string) {
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err := s.Delete(ctx, k); err != nil && !errors.Is(err, ErrNotFound) {
			log.Printf("[STORAGE] delete %q failed: %v", k, err)
		}
	}
}
