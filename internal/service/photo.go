package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/snapdish/backend/config"
)

// PhotoService handles the request-scoped temp copy of an uploaded photo and
// best-effort archival to S3.
type PhotoService struct {
	s3Config *config.S3Config
}

// NewPhotoService creates a PhotoService. A nil S3 config disables archival.
func NewPhotoService(s3Config *config.S3Config) *PhotoService {
	return &PhotoService{s3Config: s3Config}
}

// DecodeImage decodes a base64 photo, tolerating a data-URI prefix.
func DecodeImage(imageBase64 string) ([]byte, error) {
	raw := strings.TrimSpace(imageBase64)
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return data, nil
}

// WriteTemp decodes the photo into a request-scoped temp file. The returned
// cleanup must run on every exit path so the local copy never outlives the
// request.
func (p *PhotoService) WriteTemp(imageBase64 string) (string, []byte, func(), error) {
	data, err := DecodeImage(imageBase64)
	if err != nil {
		return "", nil, nil, err
	}

	f, err := os.CreateTemp("", "snapdish-scan-*.jpg")
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to create temp image file: %w", err)
	}

	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[PhotoService] Failed to remove temp image %s: %v", path, err)
		}
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, nil, fmt.Errorf("failed to write temp image file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, nil, fmt.Errorf("failed to close temp image file: %w", err)
	}

	return path, data, cleanup, nil
}

// Archive uploads the photo bytes to S3 under the scan's key. Best-effort:
// failures are logged and the request continues.
func (p *PhotoService) Archive(ctx context.Context, scanID string, data []byte) {
	if p.s3Config == nil {
		return
	}

	key := archiveKey(scanID)
	_, err := p.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(imageMimeType),
	})
	if err != nil {
		log.Printf("[PhotoService] Failed to archive photo for scan %s: %v", scanID, err)
		return
	}
	log.Printf("[PhotoService] Archived photo for scan %s to s3://%s/%s", scanID, p.s3Config.BucketName, key)
}

// ArchiveURL returns a presigned URL for a scan's archived photo.
func (p *PhotoService) ArchiveURL(ctx context.Context, scanID string) (string, error) {
	if p.s3Config == nil {
		return "", fmt.Errorf("photo archive is not configured")
	}
	return p.s3Config.GeneratePresignedURL(ctx, archiveKey(scanID), 15*time.Minute)
}

func archiveKey(scanID string) string {
	return fmt.Sprintf("scan-photos/%s.jpg", scanID)
}
