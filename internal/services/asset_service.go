package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetStorage stores brand assets (logos) in object storage.
type AssetStorage interface {
	UploadLogo(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	PresignedLogoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	DeleteLogo(ctx context.Context, objectKey string) error
	EnsureBucket(ctx context.Context) error
}

type minioAssets struct {
	client *minio.Client
	bucket string
}

func NewMinioAssetStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (AssetStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioAssets{client: client, bucket: bucket}, nil
}

func (m *minioAssets) UploadLogo(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioAssets) PresignedLogoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioAssets) DeleteLogo(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioAssets) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
