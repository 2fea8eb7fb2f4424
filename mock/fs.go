package mock

import "github.com/fwojciec/gtcheck"

// Compile-time interface verification.
var _ gtcheck.FileSystem = (*FileSystem)(nil)

// FileSystem is a mock implementation of gtcheck.FileSystem.
type FileSystem struct {
	ReadFileFn  func(path string) (string, error)
	WriteFileFn func(path, content string) error
	RemoveFn    func(path string) error
	CopyFileFn  func(src, dst string) error
	ListDirFn   func(dir string) ([]string, error)
	IsImageFn   func(path string) bool
}

func (f *FileSystem) ReadFile(path string) (string, error) {
	return f.ReadFileFn(path)
}

func (f *FileSystem) WriteFile(path, content string) error {
	return f.WriteFileFn(path, content)
}

func (f *FileSystem) Remove(path string) error {
	return f.RemoveFn(path)
}

func (f *FileSystem) CopyFile(src, dst string) error {
	return f.CopyFileFn(src, dst)
}

func (f *FileSystem) ListDir(dir string) ([]string, error) {
	return f.ListDirFn(dir)
}

func (f *FileSystem) IsImage(path string) bool {
	return f.IsImageFn(path)
}
