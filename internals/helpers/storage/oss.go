package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

/* =======================================================================
   Aliyun OSS driver
======================================================================= */

type OSSStore struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // optional: "compaward/"
	PublicBase string
}

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func NewOSSStoreFromEnv(prefix string) (*OSSStore, error) {
	endpoint := getEnv("ALI_OSS_ENDPOINT")
	ak := getEnv("ALI_OSS_ACCESS_KEY")
	sk := getEnv("ALI_OSS_SECRET_KEY")
	sts := getEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := getEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Printf("[OSS] warn: skip location check due to AccessDenied (bucket=%s)", bucketName)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", bucketName, loc)
	}

	return &OSSStore{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		PublicBase: strings.TrimRight(getEnv("ALI_OSS_PUBLIC_BASE"), "/"),
	}, nil
}

func (s *OSSStore) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.Prefix == "" {
		return key
	}
	return s.Prefix + "/" + key
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.Bucket.PutObject(s.objectKey(key), r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

func (s *OSSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.Bucket.GetObject(s.objectKey(key), oss.WithContext(ctx))
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	// OSS delete is idempotent; a missing key is not an error there.
	return s.Bucket.DeleteObject(s.objectKey(key), oss.WithContext(ctx))
}

func (s *OSSStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	marker := oss.Marker("")
	full := s.objectKey(prefix)
	var out []ObjectInfo
	for {
		lor, err := s.Bucket.ListObjects(oss.Prefix(full), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, obj := range lor.Objects {
			if obj.Key == "" {
				continue
			}
			k := obj.Key
			if s.Prefix != "" {
				k = strings.TrimPrefix(k, s.Prefix+"/")
			}
			out = append(out, ObjectInfo{Key: k, Size: obj.Size, ModifiedAt: obj.LastModified})
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}
	return out, nil
}

func (s *OSSStore) URL(key string) string {
	if key == "" {
		return ""
	}
	full := s.objectKey(key)
	if s.PublicBase != "" {
		return s.PublicBase + "/" + full
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, full)
}

func isNotFound(err error) bool {
	if e, ok := err.(oss.ServiceError); ok {
		return e.StatusCode == 404
	}
	return false
}
