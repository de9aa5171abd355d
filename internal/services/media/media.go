package media

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stormarchive/timeline-service/internal/config"
)

// Service is the media upload gateway: it writes image payloads to
// object storage under a deterministic per-event key scheme and hands
// back a public URL. Deletion is best-effort.
type Service struct {
	client     *minio.Client
	bucketName string
	config     *config.Media
	useSSL     bool
}

// NewService creates a new media service instance
func NewService(cfg *config.Config) (*Service, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &Service{
		client:     client,
		bucketName: cfg.MinIO.BucketName,
		config:     &cfg.Media,
		useSSL:     cfg.MinIO.UseSSL,
	}

	if err := service.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return service, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (s *Service) ensureBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ValidateContentType checks if the content type is allowed
func (s *Service) ValidateContentType(contentType string) bool {
	for _, allowed := range s.config.AllowedMimeTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func (s *Service) MaxFileSize() int64 {
	return s.config.MaxFileSize
}

// GenerateObjectKey creates a unique object key for a file attached to
// an event.
func (s *Service) GenerateObjectKey(eventID string, contentType string) string {
	extensions, err := mime.ExtensionsByType(contentType)
	var ext string
	if err == nil && len(extensions) > 0 {
		ext = extensions[0]
	} else {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		default:
			ext = ""
		}
	}

	filename := uuid.New().String() + ext

	return fmt.Sprintf("events/%s/media/%s", eventID, filename)
}

// Upload writes the payload to object storage and returns the object
// key and its public URL.
func (s *Service) Upload(ctx context.Context, eventID string, data []byte, contentType string) (string, string, error) {
	if !s.ValidateContentType(contentType) {
		return "", "", fmt.Errorf("content type %s is not allowed", contentType)
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return "", "", fmt.Errorf("file exceeds maximum size of %d bytes", s.config.MaxFileSize)
	}

	objectKey := s.GenerateObjectKey(eventID, contentType)

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("failed to store object: %w", err)
	}

	return objectKey, s.GetMediaURL(objectKey), nil
}

// GetMediaURL returns the public URL for accessing media (if bucket is public)
func (s *Service) GetMediaURL(objectKey string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(s.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.bucketName, objectKey)
}

// DeleteObject removes an object from storage
func (s *Service) DeleteObject(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
}

// ListBucketKeys returns every event media key in the bucket along with
// its age, for the orphan sweeper.
func (s *Service) ListBucketKeys(ctx context.Context) (map[string]time.Time, error) {
	keys := map[string]time.Time{}
	objectsCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    "events/",
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return nil, object.Err
		}
		keys[object.Key] = object.LastModified
	}

	return keys, nil
}
