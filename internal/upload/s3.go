package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/c0de128/mealmate-backup/internal/config"
)

// Uploader pushes a finished artifact to off-site storage and returns the
// remote key it was stored under.
type Uploader interface {
	Upload(ctx context.Context, artifactPath string) (key string, err error)
}

// S3Uploader stores artifacts in an S3 (or S3-compatible) bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader builds a client from the remote-upload target coordinates.
// Credentials fall back to the ambient AWS credential chain when not set
// in the config.
func NewS3Uploader(ctx context.Context, cfg config.RemoteUploadConfig) (*S3Uploader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Upload puts the artifact under <prefix>/<basename>.
func (u *S3Uploader) Upload(ctx context.Context, artifactPath string) (string, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("open artifact %q: %w", artifactPath, err)
	}
	defer f.Close()

	key := path.Join(u.prefix, filepath.Base(artifactPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return key, nil
}
