// Package archive builds Walk abstraction on top of "archive/zip". Office
// documents are zip archives, so this is how their parts are read.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxEntrySize limits amount of data read from a single archive entry.
const MaxEntrySize = 64 << 20

// ErrEntryTooLarge is returned by ReadEntry for oversized entries.
var ErrEntryTooLarge = errors.New("archive entry is too large")

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *zip.File) error

// Walk walks all files in the archive which names start with prefix, calling
// walkFn for each item. Entries with path traversal components ("..") or
// absolute paths make it fail to prevent Zip Slip attacks.
func Walk(r *zip.Reader, prefix string, walkFn WalkFunc) error {
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadEntry returns content of archive entry.
func ReadEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q: %w", f.Name, ErrEntryTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q: %w", f.Name, ErrEntryTooLarge)
	}
	return data, nil
}

// ReadAll returns content of every file which name starts with prefix,
// keyed by entry name.
func ReadAll(data []byte, prefix string) (map[string][]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, err
	}
	res := make(map[string][]byte)
	err = Walk(r, prefix, func(f *zip.File) error {
		content, err := ReadEntry(f)
		if err != nil {
			return err
		}
		res[f.Name] = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
