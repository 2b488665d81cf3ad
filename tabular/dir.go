package tabular

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/teranos/porydex/errors"
)

// Dir is a local directory of reference files.
type Dir string

func (d Dir) String() string { return string(d) }

func (d Dir) path(table string) string {
	return filepath.Join(string(d), FileName(table))
}

// Open opens <dir>/<table>.csv.
func (d Dir) Open(_ context.Context, table string) (io.ReadCloser, error) {
	f, err := os.Open(d.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, missing(err, table, d.String())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", d.path(table))
	}
	return f, nil
}

// Create writes <dir>/<table>.csv through a temporary file that replaces the
// existing one on Close, so an interrupted dump never leaves a truncated file.
func (d Dir) Create(_ context.Context, table string) (io.WriteCloser, error) {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", d)
	}
	tmp, err := os.CreateTemp(string(d), "."+FileName(table)+".*")
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", d.path(table))
	}
	return &atomicFile{File: tmp, target: d.path(table)}, nil
}

type atomicFile struct {
	*os.File
	target string
	failed error
}

func (f *atomicFile) Write(p []byte) (int, error) {
	n, err := f.File.Write(p)
	if err != nil {
		f.failed = err
	}
	return n, err
}

// Close renames the temporary file over the target, unless a write failed.
func (f *atomicFile) Close() error {
	if f.failed != nil {
		f.File.Close()
		os.Remove(f.Name())
		return errors.Wrapf(f.failed, "write %s", f.target)
	}
	if err := f.File.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrapf(err, "write %s", f.target)
	}
	if err := os.Rename(f.Name(), f.target); err != nil {
		os.Remove(f.Name())
		return errors.Wrapf(err, "replace %s", f.target)
	}
	return nil
}
