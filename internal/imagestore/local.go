package imagestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images below dir; references are URL paths under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	err := os.MkdirAll(filepath.Join(dir, "blogs"), 0o755)
	if err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}

	return &LocalStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	dst := filepath.Join(s.dir, filepath.FromSlash(key))

	err := os.MkdirAll(filepath.Dir(dst), 0o755)
	if err != nil {
		return "", fmt.Errorf("could not create image directory: %w", err)
	}

	err = os.WriteFile(dst, data, 0o644)
	if err != nil {
		return "", fmt.Errorf("could not write image: %w", err)
	}

	return path.Join(s.urlPrefix, key), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.urlPrefix+"/")
	if key == ref || strings.Contains(key, "..") {
		return fmt.Errorf("image reference %q is outside %s", ref, s.urlPrefix)
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete image: %w", err)
	}

	return nil
}
