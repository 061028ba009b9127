package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader хранит вложения этапов во внешнем объектном хранилище.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var allowedAttachmentTypes = map[string]string{
	"application/pdf":  ".pdf",
	"application/zip":  ".zip",
	"text/plain":       ".txt",
	"text/markdown":    ".md",
	"image/png":        ".png",
	"image/jpeg":       ".jpg",
	"application/json": ".json",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// ExtensionForContentType returns the file extension stored for an attachment content type.
func ExtensionForContentType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type %q: %w", contentType, err)
	}
	ext, ok := allowedAttachmentTypes[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("unsupported attachment content type %q", mediaType)
	}
	return ext, nil
}

// ProcessAttachmentKey builds a fresh object key for a stage attachment.
func ProcessAttachmentKey(processID int, ext string) string {
	return fmt.Sprintf("processes/%d/%s%s", processID, uuid.NewString(), ext)
}
