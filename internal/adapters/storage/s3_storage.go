package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/pkg/config"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const photoFolder = "photos"

// S3Storage stores business photos in an S3-compatible bucket
type S3Storage struct {
	client s3iface.S3API
	bucket string
}

// NewS3Storage creates an S3 storage backend from configuration
func NewS3Storage(cfg *config.StorageConfig) (providers.FileStorage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.S3AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}
	return NewS3StorageWithClient(s3.New(sess), cfg.S3Bucket), nil
}

// NewS3StorageWithClient wraps an existing S3 client
func NewS3StorageWithClient(client s3iface.S3API, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

// Put uploads data under photos/name with public read access
func (s *S3Storage) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := photoFolder + "/" + strings.TrimLeft(name, "/")

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", apperrors.NewExternalError("Problem with file upload", err)
	}
	return name, nil
}
