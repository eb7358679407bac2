// Package io abstracts the storage a table lives on. A table base path and
// everything under it (data files, timeline, descriptor) is accessed through
// a FileIO, so the engine runs unchanged against a local directory or an S3
// bucket.
package io

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileIO is the interface for storage operations on a table location.
type FileIO interface {
	// Open opens a file for reading.
	Open(ctx context.Context, location string) (InputFile, error)

	// Create creates a new file for writing.
	Create(ctx context.Context, location string) (OutputFile, error)

	// Delete deletes a file.
	Delete(ctx context.Context, location string) error

	// DeleteFiles deletes multiple files.
	DeleteFiles(ctx context.Context, locations []string) error

	// Exists checks if a file exists.
	Exists(ctx context.Context, location string) (bool, error)

	// ListFiles lists the files under a prefix. Returned locations are
	// absolute and sorted lexically.
	ListFiles(ctx context.Context, prefix string) ([]string, error)

	// Properties returns the properties of this FileIO.
	Properties() map[string]string
}

// InputFile represents a readable file.
type InputFile interface {
	// Location returns the file location.
	Location() string

	// Exists checks if the file exists.
	Exists(ctx context.Context) (bool, error)

	// Length returns the file length in bytes.
	Length(ctx context.Context) (int64, error)

	// Open opens the file for reading.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// OutputFile represents a writable file.
type OutputFile interface {
	// Location returns the file location.
	Location() string

	// Create creates the file for writing. It fails if the file already
	// exists, which is what makes data file and timeline writes safe to
	// retry under a fresh name.
	Create(ctx context.Context) (io.WriteCloser, error)

	// CreateOverwrite creates or overwrites the file.
	CreateOverwrite(ctx context.Context) (io.WriteCloser, error)

	// ToInputFile converts this to an InputFile after writing.
	ToInputFile() InputFile
}

// ReadAll reads the full content of a file.
func ReadAll(ctx context.Context, fio FileIO, location string) ([]byte, error) {
	in, err := fio.Open(ctx, location)
	if err != nil {
		return nil, err
	}

	r, err := in.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

// WriteAll writes content to a new file, failing if it already exists.
func WriteAll(ctx context.Context, fio FileIO, location string, data []byte) error {
	out, err := fio.Create(ctx, location)
	if err != nil {
		return err
	}

	w, err := out.Create(ctx)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return w.Close()
}

// Join joins location elements with forward slashes. Table locations always
// use forward slashes regardless of the host OS.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// BaseName returns the last element of a location.
func BaseName(location string) string {
	return path.Base(strings.TrimSuffix(location, "/"))
}
