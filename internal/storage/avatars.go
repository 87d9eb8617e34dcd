package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// presignTTL is how long avatar download links stay valid.
const presignTTL = 10 * time.Minute

// AvatarStore stores avatar images in an S3-compatible bucket
type AvatarStore struct {
	client *minio.Client
	bucket string
	log    *logrus.Logger
}

// NewAvatarStore initializes the object store client
func NewAvatarStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logrus.Logger) (*AvatarStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &AvatarStore{client: client, bucket: bucket, log: log}, nil
}

// Upload writes the object under key and returns a presigned GET URL
// valid for ten minutes.
func (s *AvatarStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}

	s.log.Debugf("Uploaded avatar %s", key)
	return url.String(), nil
}
