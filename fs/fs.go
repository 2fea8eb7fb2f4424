// Package fs implements gtcheck.FileSystem on the local disk.
package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.FileSystem = (*FileSystem)(nil)

// FileSystem reads and writes files with the os package.
type FileSystem struct{}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// ReadFile returns the content of path. A missing file yields an error
// wrapping gtcheck.ErrNotFound.
func (f *FileSystem) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, gtcheck.ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories if needed.
func (f *FileSystem) WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// Remove deletes path. Removing a missing file is not an error.
func (f *FileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories of dst.
func (f *FileSystem) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListDir returns the sorted names of regular files in dir.
func (f *FileSystem) ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, gtcheck.ErrNotFound)
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// Magic numbers of scan formats http.DetectContentType does not know.
var extraImageMagic = [][]byte{
	[]byte("II*\x00"),                        // TIFF, little endian
	[]byte("MM\x00*"),                        // TIFF, big endian
	[]byte("\x00\x00\x00\x0cjP  \r\n\x87\n"), // JPEG 2000
}

// IsImage reports whether the content of path starts with the magic bytes
// of an image format.
func (f *FileSystem) IsImage(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	head = head[:n]

	if strings.HasPrefix(http.DetectContentType(head), "image/") {
		return true
	}
	for _, magic := range extraImageMagic {
		if bytes.HasPrefix(head, magic) {
			return true
		}
	}
	return false
}
