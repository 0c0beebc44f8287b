package uploads

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// DiskBackend writes uploads into a directory.
type DiskBackend struct {
	fs  afero.Fs
	dir string
}

// NewDiskBackend creates dir on fs if needed.
func NewDiskBackend(fs afero.Fs, dir string) (*DiskBackend, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskBackend{fs: fs, dir: dir}, nil
}

func (d *DiskBackend) Put(ctx context.Context, key, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return afero.WriteFile(d.fs, filepath.Join(d.dir, key), data, 0o644)
}
