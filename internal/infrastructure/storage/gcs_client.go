package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"masterhub/pkg/logger"
)

const (
	publicURLPrefix = "https://storage.googleapis.com/"
	signedURLExpiry = 15 * time.Minute
)

// CloudStorageClient stores avatars and chat attachments in one bucket.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("failed to set bucket CORS configuration: %v", err)
	}

	return storageClient, nil
}

// setBucketCORS allows browsers to PUT to presigned URLs.
func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	attrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %w", err)
	}
	if len(attrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          time.Hour,
			Methods:         []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			Origins:         []string{"*"},
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket CORS: %w", err)
	}
	return nil
}

// UploadFile writes the object under key and returns its public URL.
func (c *CloudStorageClient) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	wc := c.client.Bucket(c.bucketName).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return c.PublicURL(key), nil
}

func (c *CloudStorageClient) PublicURL(key string) string {
	return publicURLPrefix + c.bucketName + "/" + key
}

// DeleteFile removes the object a public URL points at.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	key, err := c.objectKey(fileURL)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *CloudStorageClient) objectKey(fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	return parts[1], nil
}

// GenerateSignedUploadURL returns a short-lived PUT URL for key.
func (c *CloudStorageClient) GenerateSignedUploadURL(ctx context.Context, key, contentType string) (string, error) {
	url, err := c.client.Bucket(c.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(signedURLExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
