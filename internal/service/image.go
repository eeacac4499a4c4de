package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/homecuistot/backend/config"
)

// ImageService stores recipe images in S3.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates an ImageService. A nil s3Config disables
// image storage (uploads fail with a classified error).
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadRecipeImage stores one image under the recipe's key and returns
// a presigned URL valid for a week.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (string, error) {
	if s.s3Config == nil {
		return "", fmt.Errorf("%w: image storage is not configured", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image data is required", ErrInvalidInput)
	}

	key := fmt.Sprintf("recipes/%s/%s", recipeID, uuid.New())
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: image upload failed: %v", ErrStorage, err)
	}

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, 7*24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("%w: presign failed: %v", ErrStorage, err)
	}
	return url, nil
}
