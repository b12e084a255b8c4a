package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio-backend/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("only images are supported")
	ErrTooLarge = errors.New("file too large")
	ErrBadPath  = errors.New("invalid path")
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/api/uploads/"

const sniffLen = 3072

// LocalStore keeps uploads as flat files under one directory.
type LocalStore struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

func NewLocalStore(root string, maxBytes int64) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: abs, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// UploadImage stores r when both the declared type and the sniffed bytes say
// it is an image, and returns its public URL.
func (s *LocalStore) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", ErrNotImage
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	if n == 0 {
		return "", ErrNotImage
	}

	detected := mimetype.Detect(head)
	if !isImage(detected) {
		return "", ErrNotImage
	}

	name := s.storedName(filename, detected.Extension())
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.write(name, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

func (s *LocalStore) write(name string, r io.Reader) error {
	path := filepath.Join(s.root, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return fmt.Errorf("write file: %w", copyErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		_ = os.Remove(path)
		return ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return closeErr
	}
	return nil
}

// storedName is <unix-ms>-<uuid8>-<sanitized original>.
func (s *LocalStore) storedName(original, ext string) string {
	clean := sanitize(original)
	if clean == "" {
		clean = "upload"
	}
	if filepath.Ext(clean) == "" {
		clean += ext
	}
	return fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], clean)
}

// Resolve maps a served name to a path inside the root.
func (s *LocalStore) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrBadPath
	}
	full := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrBadPath
	}
	return full, nil
}

// sanitize drops any directory part before cleaning the name.
func sanitize(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return utils.SanitizeFilename(base)
}

// SVG is excluded: it is served as a document and can carry script.
func isImage(m *mimetype.MIME) bool {
	return strings.HasPrefix(m.String(), "image/") && !m.Is("image/svg+xml")
}
