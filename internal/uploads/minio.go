package uploads

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig describes the object storage used for uploads.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, r *bytes.Reader, size int64, contentType string) error
}

type minioClient struct {
	client *minio.Client
}

func (m minioClient) PutObject(ctx context.Context, bucket, object string, r *bytes.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// MinioBackend writes uploads as objects under the "resume/" prefix.
type MinioBackend struct {
	putter objectPutter
	bucket string
}

// NewMinioBackend connects to MinIO and makes sure the bucket exists.
func NewMinioBackend(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioBackend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &MinioBackend{putter: minioClient{client: client}, bucket: cfg.Bucket}, nil
}

func (m *MinioBackend) Put(ctx context.Context, key, contentType string, data []byte) error {
	object := "resume/" + key
	if err := m.putter.PutObject(ctx, m.bucket, object, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return fmt.Errorf("put object %s/%s: %w", m.bucket, object, err)
	}
	return nil
}
