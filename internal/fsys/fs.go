// Package fsys adapts fs.FS values to the absolute slash-rooted paths
// the rest of ctc works with.
package fsys

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/cubicletools/ctc/internal/format"
)

type FS struct {
	fsys fs.FS
}

func New(fsys fs.FS) *FS {
	return &FS{
		fsys: fsys,
	}
}

func (f *FS) Open(name string) (fs.File, error) {
	return f.fsys.Open(f.convertToFS(name))
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func (f *FS) stat(name string) (fs.FileInfo, error) {
	sf, ok := f.fsys.(fs.StatFS)
	if ok {
		return sf.Stat(f.convertToFS(name))
	}

	// Fallback: use Open and get FileInfo from the file
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return file.Stat()
}

func (f *FS) convertToFS(path string) string {
	result := strings.TrimPrefix(path, "/")
	if result == "" {
		return "."
	}
	return result
}

// FindFile resolves an extension-less path to a real file by trying
// every supported data format extension in order. Returns "" when no
// candidate exists.
func (f *FS) FindFile(path string) string {
	for _, ext := range format.Extensions() {
		extPath := fmt.Sprintf("%s.%s", path, ext)
		if _, err := f.stat(extPath); err == nil {
			return extPath
		}
	}
	return ""
}
