package service

import (
	"context"
	"io"
)

// FileUploadService is the object store used for avatars and chat attachments.
type FileUploadService interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	GenerateSignedUploadURL(ctx context.Context, key, contentType string) (string, error)
}

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ExtensionFor returns the object key extension for an accepted upload
// content type.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := allowedContentTypes[contentType]
	return ext, ok
}
