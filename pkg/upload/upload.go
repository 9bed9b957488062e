package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes media files into a Cloud Storage bucket and hands back
// their public URLs. The URL is stored as an opaque string; nothing else in
// the system interprets it.
type Uploader struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewUploader creates an Uploader over an already opened bucket.
func NewUploader(bucket *storage.BucketHandle, bucketName string) *Uploader {
	return &Uploader{bucket: bucket, bucketName: bucketName}
}

// UploadImage streams a multipart file into the bucket under a generated
// object name and returns the object's public URL.
func (u *Uploader) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("posts/%s%s", uuid.NewString(), filepath.Ext(file.Filename))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = file.Header.Get("Content-Type")
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish upload: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, name), nil
}
