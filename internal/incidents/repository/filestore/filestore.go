package filestore

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// DiskStore writes uploaded files under a single directory with generated
// names shaped as <unix-ms>-<random><ext>, the original name survives only
// through its extension.
type DiskStore struct {
	dir string
}

func New(dir string) (DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DiskStore{}, fmt.Errorf("create uploads dir error: %w", err)
	}

	return DiskStore{dir: dir}, nil
}

func (ds DiskStore) Save(src io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%d%s",
		time.Now().UnixMilli(),
		rand.Int63n(1e9), //nolint:gosec
		filepath.Ext(originalName),
	)
	path := filepath.Join(ds.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file error: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)

		return "", fmt.Errorf("write file error: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)

		return "", fmt.Errorf("close file error: %w", err)
	}

	return path, nil
}

func (ds DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file error: %w", err)
	}

	return nil
}
