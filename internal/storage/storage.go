package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docbrief/docbrief/internal/config"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// UploadStore writes inbound files to a scratch directory under random
// names. Files live only for the duration of one processing pass.
type UploadStore struct {
	dir string
	log *zap.Logger
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

func New(p Params) (*UploadStore, error) {
	dir := strings.TrimSpace(p.Config.UploadDir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{
		dir: dir,
		log: p.Log.Named("storage"),
	}, nil
}

// Save copies the stream to a new temp file and returns its path. The
// original filename never reaches the filesystem.
func (s *UploadStore) Save(src io.Reader, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name = name + "." + ext
	}
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write temp upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close temp upload: %w", err)
	}
	return path, nil
}

// Remove deletes a temp upload. Failures are logged, not returned; a leaked
// temp file must never fail the request it belonged to.
func (s *UploadStore) Remove(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove temp upload", zap.String("path", path), zap.Error(err))
	}
}

var Module = fx.Module("storage",
	fx.Provide(New),
)
