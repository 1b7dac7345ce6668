package storage

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultMinIOPort   = "9000"
	objectStoreTimeout = 5 * time.Second
)

// NewMinIOClient builds a MinIO client. An endpoint without a port gets the MinIO API port.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	endpoint := cfg.Endpoint
	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		endpoint = net.JoinHostPort(endpoint, defaultMinIOPort)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// EnsureBucket creates the ciphertext bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	ctx, cancel := context.WithTimeout(ctx, objectStoreTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return nil
}

func openMinIOBlobs(ctx context.Context, cfg config.MinIOConfig) (*file.MinIOStore, error) {
	client, err := NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return nil, err
	}
	return file.NewMinIOStore(client, cfg.Bucket), nil
}
