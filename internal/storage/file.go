package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// File stores each key as a file in a directory. Writes go through a
// temporary file and a rename so a crash never leaves a torn value.
type File struct {
	mu     sync.Mutex
	dir    string
	closed bool
}

// NewFile creates a file store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the root directory.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".kv")
}

// Get implements KV.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	if err := checkKey("get", key); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, wrap("get", key, ErrClosed)
	}

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, wrap("get", key, err)
	}
	return string(data), true, nil
}

// Set implements KV.
func (f *File) Set(_ context.Context, key, value string) error {
	if err := checkKey("set", key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return wrap("set", key, ErrClosed)
	}

	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return wrap("set", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrap("set", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrap("set", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrap("set", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return wrap("set", key, err)
	}
	return nil
}

// Remove implements KV.
func (f *File) Remove(_ context.Context, key string) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return wrap("remove", key, ErrClosed)
	}

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return wrap("remove", key, err)
	}
	return nil
}

// Close implements KV.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
