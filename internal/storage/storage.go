// Package storage keeps evidence files on local disk or in Supabase Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/legal-practice-backend/pkg/sanitize"
)

// Store saves and removes uploaded objects.
type Store interface {
	// Put writes r under key and returns where the file can be found
	// (a path under /uploads for disk, a storage key for remote stores).
	Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	// URL returns a link the caller can download location from.
	URL(ctx context.Context, location string) (string, error)
}

// PublicPrefix is the route the local upload dir is served under.
const PublicPrefix = "/uploads"

// ObjectKey builds a per-case key: case/<caseID>/<unix>-<rand>-<safe name>
func ObjectKey(caseID uuid.UUID, filename string) string {
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], sanitize.Filename(filename))
	return path.Join("case", caseID.String(), name)
}

/* ================================ Local ================================= */

// Local stores files under a directory served statically at PublicPrefix.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ string, _ int64) (string, error) {
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return path.Join(strings.TrimPrefix(PublicPrefix, "/"), key), nil
}

// URL is the static route of a stored file.
func (l *Local) URL(_ context.Context, location string) (string, error) {
	return "/" + strings.TrimPrefix(location, "/"), nil
}

// Delete is idempotent: a missing file is not an error.
// It accepts either the key or the location returned by Put.
func (l *Local) Delete(_ context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimPrefix(key, "/"), strings.TrimPrefix(PublicPrefix, "/")+"/")
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps a key inside the upload dir, refusing traversal.
func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}
