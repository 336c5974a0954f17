package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/ikkim/agroshop-backend/config"
	"github.com/ikkim/agroshop-backend/pkg/logger"
)

// ImageResolver turns a stored image key into a URL a browser can load.
type ImageResolver interface {
	URL(ctx context.Context, key string) string
}

type S3Storage struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	baseURL       string
	presignExpiry time.Duration
}

func NewS3Storage(cfg appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	client := s3.NewFromConfig(awsCfg)
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &S3Storage{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		presignExpiry: expiry,
	}
}

// URL prefers the public base URL (CloudFront) and otherwise hands out a
// presigned GET for the private bucket.
func (s *S3Storage) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	if isAbsolute(key) {
		return key
	}
	key = strings.TrimLeft(key, "/")

	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		logger.Warn("Failed to presign image URL", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}
	return req.URL
}

// StaticResolver serves keys from a fixed public prefix, e.g. a local /storage mount.
type StaticResolver struct {
	BaseURL string
}

func (r StaticResolver) URL(_ context.Context, key string) string {
	if key == "" || isAbsolute(key) {
		return key
	}
	if r.BaseURL == "" {
		return key
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

func isAbsolute(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}
