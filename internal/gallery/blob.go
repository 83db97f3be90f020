package gallery

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
)

// BlobConfig configures the S3-compatible bucket holding the image bytes.
// Endpoint supports R2 and other S3-compatible providers; leave it empty
// for plain AWS S3.
type BlobConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	BaseURL         string
}

type s3Blob struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewBlobStore creates an S3-backed BlobStore.
func NewBlobStore(ctx context.Context, cfg BlobConfig) (BlobStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load blob storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &s3Blob{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}, nil
}

func (b *s3Blob) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error("Failed to upload blob", "error", err, "key", key)
		return err
	}
	return nil
}

func (b *s3Blob) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error("Failed to delete blob", "error", err, "key", key)
		return err
	}
	return nil
}

func (b *s3Blob) URL(key string) string {
	return fmt.Sprintf("%s/%s", b.baseURL, key)
}
