package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/dmitrijs2005/employeehub/internal/filex"
)

// FileSystem keeps objects as files under root. The root directory is
// created on first write.
type FileSystem struct {
	root       string
	publicPath string
}

// NewFileSystem returns a backend rooted at root whose URLs start with
// publicPath, e.g. "/uploads".
func NewFileSystem(root, publicPath string) *FileSystem {
	return &FileSystem{root: root, publicPath: publicPath}
}

func (f *FileSystem) path(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, key)
	}
	return filepath.Join(f.root, filepath.FromSlash(clean)), nil
}

func (f *FileSystem) Put(_ context.Context, key string, r io.Reader) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if _, err := filex.EnsureDir(filepath.Dir(p)); err != nil {
		return err
	}

	file, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(p)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(p)
		return err
	}
	return nil
}

func (f *FileSystem) Move(_ context.Context, from, to string) error {
	src, err := f.path(from)
	if err != nil {
		return err
	}
	dst, err := f.path(to)
	if err != nil {
		return err
	}
	if _, err := filex.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

// Remove deletes key. A missing file is not an error.
func (f *FileSystem) Remove(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileSystem) Exists(_ context.Context, key string) (bool, error) {
	p, err := f.path(key)
	if err != nil {
		return false, err
	}
	return filex.Exists(p)
}

func (f *FileSystem) URL(_ context.Context, key string) (string, error) {
	return path.Join(f.publicPath, key), nil
}
