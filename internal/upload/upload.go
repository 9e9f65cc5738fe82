// Package upload stores complaint attachments on the local filesystem.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
)

// File is a stored upload as referenced by a complaint attachment.
type File struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Store writes uploads into Dir and serves them under URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

func NewStore(dir, urlPrefix string, maxBytes int64) *Store {
	return &Store{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}
}

// Init creates the upload directory.
func (s *Store) Init() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Save writes r under a unique "<uuid>-<name>" file name. Files larger than
// MaxBytes are rejected and nothing is kept.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (*File, error) {
	name := cleanName(filename)
	if name == "" {
		return nil, apperr.Validation("file name is required", map[string]string{"file": "is required"})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := uuid.NewString() + "-" + name
	full := filepath.Join(s.Dir, stored)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("create upload: %w", err))
	}

	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = errTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, errTooLarge) {
			return nil, apperr.Validation("file is too large", map[string]string{
				"file": fmt.Sprintf("must be at most %d bytes", s.MaxBytes),
			})
		}
		return nil, apperr.Internal(fmt.Errorf("write upload: %w", err))
	}

	return &File{URL: path.Join(s.URLPrefix, stored), Name: name, Size: n}, nil
}

var errTooLarge = errors.New("upload too large")

// cleanName keeps the base name of a client-supplied path.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
