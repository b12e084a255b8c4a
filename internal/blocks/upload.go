package blocks

import (
	"context"
	"io"
	"log/slog"
)

// ImageUploader stores one image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// UploadFile is one file of a multi-upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type UploadResult struct {
	URLs   []string `json:"urls"`
	Failed []string `json:"failed"`
}

// UploadImages uploads files one after another. URLs are returned in
// submission order; a failed file is logged and skipped without affecting
// the others.
func UploadImages(ctx context.Context, uploader ImageUploader, files []UploadFile, log *slog.Logger) UploadResult {
	result := UploadResult{URLs: []string{}, Failed: []string{}}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		url, err := uploadOne(ctx, uploader, f)
		if err != nil {
			if log != nil {
				log.Warn("gallery upload: file skipped", slog.String("file", f.Name), slog.String("error", err.Error()))
			}
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		result.URLs = append(result.URLs, url)
	}
	return result
}

func uploadOne(ctx context.Context, uploader ImageUploader, f UploadFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return uploader.UploadImage(ctx, f.Name, f.ContentType, rc)
}
