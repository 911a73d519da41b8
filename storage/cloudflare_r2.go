package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidR2Config = errors.New("invalid Cloudflare R2 configuration: all fields are required")

type CloudflareR2UploaderConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c CloudflareR2UploaderConfig) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

type cloudflareR2Uploader struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
}

func NewCloudflareR2Uploader(ctx context.Context, cfg CloudflareR2UploaderConfig) (FileUploader, error) {
	if !cfg.Enabled() {
		return nil, ErrInvalidR2Config
	}
	if _, err := url.Parse(cfg.PublicBaseURL); err != nil {
		return nil, fmt.Errorf("invalid R2 public base URL: %w", err)
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	s3Client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &cloudflareR2Uploader{
		s3Client:      s3Client,
		bucketName:    cfg.BucketName,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (u *cloudflareR2Uploader) Upload(ctx context.Context, obj Object) (*StoredObject, error) {
	if obj.Key == "" {
		return nil, errors.New("object key is required")
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucketName),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}
	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload object to R2 (key: %s): %w", obj.Key, err)
	}

	return &StoredObject{
		Key:  obj.Key,
		URL:  u.PublicURL(obj.Key),
		Size: len(obj.Body),
	}, nil
}

func (u *cloudflareR2Uploader) PublicURL(key string) string {
	return publicURL(u.publicBaseURL, key)
}

// publicURL joins base and key with exactly one slash between them.
func publicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.JoinPath(strings.TrimPrefix(key, "/")).String()
}
