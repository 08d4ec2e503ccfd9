package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"network/internal/config"
	"network/internal/model"
)

// ErrPermissionDenied marks a delete the bucket policy refused.
// Cleanup workers treat it as non-fatal.
var ErrPermissionDenied = errors.New("storage: permission denied")

const (
	avatarMaxDim    = 600 // full-size avatars are bounded, not cropped
	jpegQuality     = 85
	contentTypeJPEG = "image/jpeg"
	cacheControl    = "public, max-age=31536000"
)

// UploadResult carries the public URLs and object keys of a stored
// avatar pair.
type UploadResult struct {
	URL      string
	Key      string
	ThumbURL string
	ThumbKey string
}

// AvatarStore handles avatar uploads to an S3-compatible bucket
// (Cloudflare R2).
type AvatarStore struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewAvatarStore constructs an S3-compatible client for Cloudflare R2.
func NewAvatarStore(ctx context.Context, cfg *config.Config) (*AvatarStore, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &AvatarStore{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// Upload validates the file, normalizes it to JPEG, renders the square
// thumbnail used in feed rows, and uploads both objects.
func (s *AvatarStore) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	data, err := readAndValidateImage(file, header, model.MaxAvatarSizeBytes)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.ErrInvalidImage
	}

	full, err := encodeJPEG(imaging.Fit(img, avatarMaxDim, avatarMaxDim, imaging.Lanczos))
	if err != nil {
		return nil, err
	}
	thumb, err := encodeJPEG(imaging.Fill(img, model.AvatarThumbSize, model.AvatarThumbSize, imaging.Center, imaging.Lanczos))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := fmt.Sprintf("%s/%s.jpg", model.AvatarFolder, id)
	thumbKey := fmt.Sprintf("%s/%s_thumb.jpg", model.AvatarFolder, id)

	if err := s.putObject(ctx, key, full); err != nil {
		return nil, err
	}
	if err := s.putObject(ctx, thumbKey, thumb); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      fmt.Sprintf("%s/%s", s.publicURL, key),
		Key:      key,
		ThumbURL: fmt.Sprintf("%s/%s", s.publicURL, thumbKey),
		ThumbKey: thumbKey,
	}, nil
}

// Remove deletes an object by key. Callers should ensure the key is not
// the shared default avatar.
func (s *AvatarStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "AccessDenied") {
			return fmt.Errorf("delete %s: %w", key, ErrPermissionDenied)
		}
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}

// putObject uploads bytes to the bucket with metadata.
func (s *AvatarStore) putObject(ctx context.Context, key string, body []byte) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentTypeJPEG),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header.Size > maxSize {
		return nil, model.ErrImageTooLarge
	}

	limitedReader := io.LimitReader(file, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, model.ErrImageTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType != contentTypeJPEG && contentType != "image/png" {
		return nil, model.ErrInvalidImage
	}

	return data, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
