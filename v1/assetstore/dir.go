package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DirSource reads assets from a directory on the local filesystem.
// Names are resolved through io/fs, so they cannot escape the root.
type DirSource struct {
	root string
	fsys fs.FS
}

// NewDirSource returns a DirSource rooted at dir. The directory must exist.
func NewDirSource(dir string) (*DirSource, error) {
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assetstore: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assetstore: %s is not a directory", dir)
	}
	return &DirSource{root: dir, fsys: os.DirFS(dir)}, nil
}

// Root returns the base directory.
func (d *DirSource) Root() string {
	return d.root
}

// ReadFile returns the contents of name. Missing files yield ErrNotFound.
func (d *DirSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("assetstore: read %s: %w", name, err)
	}
	return data, nil
}
