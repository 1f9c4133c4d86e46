package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	ProductImageFolder = "products"
	MaxImageSize       = 5 << 20
	presignExpiry      = 15 * time.Minute
)

var (
	ErrContentTypeNotAllowed = errors.New("content type is not allowed")
	ErrFileTooLarge          = errors.New("file exceeds the maximum size")
)

// image types accepted for product photos, mapped to the extension we store
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStorage stores product images and hands out their public URLs
type ImageStorage interface {
	PresignUpload(ctx context.Context, contentType string) (*PresignedUpload, error)
	Upload(ctx context.Context, contentType string, size int64, body io.Reader) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewS3Storage uses static credentials when both keys are set and the
// default AWS credential chain otherwise.
func NewS3Storage(ctx context.Context, region, bucket, accessKeyID, secretAccessKey, baseURL string) (*S3Storage, error) {
	var cfg aws.Config
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// ValidateImage checks the content type and size of a product image
func ValidateImage(contentType string, size int64) error {
	if _, ok := imageExtensions[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

func newObjectKey(contentType string) string {
	return path.Join(ProductImageFolder, uuid.NewString()+imageExtensions[contentType])
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// PresignUpload returns a PUT URL the admin UI uploads to directly
func (s *S3Storage) PresignUpload(ctx context.Context, contentType string) (*PresignedUpload, error) {
	if err := ValidateImage(contentType, 0); err != nil {
		return nil, err
	}

	key := newObjectKey(contentType)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

// Upload streams an image through the server into the bucket
func (s *S3Storage) Upload(ctx context.Context, contentType string, size int64, body io.Reader) (string, error) {
	if err := ValidateImage(contentType, size); err != nil {
		return "", err
	}

	key := newObjectKey(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		Body:          body,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.fileURL(key), nil
}
