// Package upload stores attachments on local disk and serves them by
// public URL. The rest of the system only ever sees the URL.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded files under dir and builds URLs below
// baseURL + "/uploads/".
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates the upload store, ensuring the directory exists.
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the on-disk directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// sanitizeName strips any path components and characters that would be
// awkward in a URL, keeping the extension.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// Upload writes the file and returns its public URL. Stored names are
// prefixed with a fresh uuid so uploads never collide.
func (s *Store) Upload(name string, r io.Reader) (string, error) {
	stored := uuid.NewString() + "-" + sanitizeName(name)
	path := filepath.Join(s.dir, stored)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	_, copyErr := io.Copy(f, r)
	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", copyErr)
	}
	return s.baseURL + "/uploads/" + stored, nil
}
