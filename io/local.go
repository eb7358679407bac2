package io

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalFileIO implements FileIO on the local filesystem.
type LocalFileIO struct {
	properties map[string]string
}

// NewLocalFileIO creates a new local file I/O handler.
func NewLocalFileIO() *LocalFileIO {
	return &LocalFileIO{
		properties: map[string]string{"io-impl": "local"},
	}
}

// Open opens a file for reading.
func (l *LocalFileIO) Open(ctx context.Context, location string) (InputFile, error) {
	return &localInputFile{path: localPath(location)}, nil
}

// Create creates a new file for writing.
func (l *LocalFileIO) Create(ctx context.Context, location string) (OutputFile, error) {
	return &localOutputFile{path: localPath(location)}, nil
}

// Delete deletes a file.
func (l *LocalFileIO) Delete(ctx context.Context, location string) error {
	return os.Remove(localPath(location))
}

// DeleteFiles deletes multiple files.
func (l *LocalFileIO) DeleteFiles(ctx context.Context, locations []string) error {
	for _, location := range locations {
		if err := l.Delete(ctx, location); err != nil {
			return fmt.Errorf("failed to delete %s: %w", location, err)
		}
	}
	return nil
}

// Exists checks if a file exists.
func (l *LocalFileIO) Exists(ctx context.Context, location string) (bool, error) {
	_, err := os.Stat(localPath(location))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ListFiles lists the files under a prefix, sorted lexically. A missing
// prefix directory is an empty listing, not an error.
func (l *LocalFileIO) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	root := localPath(prefix)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, filepath.ToSlash(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Properties returns the properties of this FileIO.
func (l *LocalFileIO) Properties() map[string]string {
	return l.properties
}

// localPath strips a file:// prefix if present.
func localPath(location string) string {
	return strings.TrimPrefix(location, "file://")
}

// localInputFile implements InputFile on the local filesystem.
type localInputFile struct {
	path string
}

func (f *localInputFile) Location() string {
	return f.path
}

func (f *localInputFile) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (f *localInputFile) Length(ctx context.Context) (int64, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *localInputFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.path)
}

// localOutputFile implements OutputFile on the local filesystem.
type localOutputFile struct {
	path string
}

func (f *localOutputFile) Location() string {
	return f.path
}

func (f *localOutputFile) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

func (f *localOutputFile) CreateOverwrite(ctx context.Context) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return os.Create(f.path)
}

func (f *localOutputFile) ToInputFile() InputFile {
	return &localInputFile{path: f.path}
}
