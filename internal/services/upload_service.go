package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"community-backend/internal/config"
)

// UploadResult points at a stored binary
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader stores member photos and returns a public URL. Upload failures
// abort the enclosing tree mutation, so implementations must not partially
// succeed.
type Uploader interface {
	UploadDataURI(ctx context.Context, dataURI, folder string) (*UploadResult, error)
}

// UploadError wraps a storage failure so handlers can map it to a distinct
// status from validation problems
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return "photo upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// S3Uploader stores photos in an S3-compatible bucket (R2, MinIO, AWS)
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Uploader builds an uploader from the storage configuration
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey, cfg.Storage.SecretKey, "",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure S3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		o.UsePathStyle = true // Required for MinIO and R2
	})

	return &S3Uploader{
		client:    client,
		bucket:    cfg.Storage.Bucket,
		publicURL: strings.TrimSuffix(cfg.Storage.PublicURL, "/"),
	}, nil
}

// UploadDataURI decodes a data:image/...;base64 payload and stores it under
// the given folder with a fresh key
func (u *S3Uploader) UploadDataURI(ctx context.Context, dataURI, folder string) (*UploadResult, error) {
	contentType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return nil, &UploadError{Err: err}
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.NewString(), extensionFor(contentType))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, &UploadError{Err: err}
	}

	return &UploadResult{
		URL: u.publicURL + "/" + key,
		Key: key,
	}, nil
}

// decodeDataURI splits "data:image/png;base64,..." into content type and
// raw bytes
func decodeDataURI(dataURI string) (string, []byte, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, fmt.Errorf("photo must be an image data URI")
	}
	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	contentType := strings.TrimPrefix(header, "data:")
	contentType = strings.TrimSuffix(contentType, ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %w", err)
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
