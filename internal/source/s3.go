package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Options configures the S3 client. Empty fields fall back to the default AWS chain.
type S3Options struct {
	Region      string
	Endpoint    string
	AccessKeyID string
	SecretKey   string
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(s3url string) (bucket, key string, err error) {
	path := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return "", "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	return path[:slash], path[slash+1:], nil
}

// NewS3Client builds an S3 client from opts. Empty fields fall back to the
// default AWS configuration chain.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func downloadS3ToTemp(ctx context.Context, opts S3Options, tempDir, s3url string) (string, error) {
	bucket, key, err := ParseS3URL(s3url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	cli, err := NewS3Client(ctx, opts)
	if err != nil {
		return "", err
	}

	// Ensure .pdf extension for renderer expectations
	f, err := os.CreateTemp(tempDir, tempPattern)
	if err != nil {
		return "", err
	}
	defer f.Close()

	n, err := manager.NewDownloader(cli).Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = os.Remove(f.Name())
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}
		return "", fmt.Errorf("%w: download s3://%s/%s: %w", ErrNotFound, bucket, key, err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int64("bytes", n).Str("file", filepath.Base(f.Name())).Msg("downloaded s3 pdf to temp")
	return f.Name(), nil
}
