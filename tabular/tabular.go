// Package tabular locates the CSV reference files the catalog is loaded from
// and dumped to: one <table>.csv per table, in a local directory or under an
// S3 prefix.
package tabular

import (
	"context"
	"io"
	"strings"

	"github.com/teranos/porydex/errors"
)

// Source opens a table's reference file for reading.
type Source interface {
	Open(ctx context.Context, table string) (io.ReadCloser, error)
	String() string
}

// Sink creates (or replaces) a table's reference file.
// The file is complete only once the returned writer is closed without error.
type Sink interface {
	Create(ctx context.Context, table string) (io.WriteCloser, error)
	String() string
}

// Location is both a Source and a Sink.
type Location interface {
	Source
	Sink
}

// FileName returns the reference file name for a table.
func FileName(table string) string {
	return table + ".csv"
}

// Parse resolves a data location. "s3://bucket/prefix" selects S3 with the
// given options; anything else is a local directory.
func Parse(ctx context.Context, location string, opts S3Options) (Location, error) {
	if location == "" {
		return nil, errors.WithHint(errors.New("empty data location"),
			"pass --data or set data.location in porydex.toml")
	}
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, errors.Newf("data location %q has no bucket", location)
		}
		opts.Bucket = bucket
		opts.Prefix = prefix
		loc, err := NewS3(ctx, opts)
		if err != nil {
			return nil, err
		}
		return loc, nil
	}
	if strings.Contains(location, "://") {
		return nil, errors.WithHint(errors.Newf("unsupported data location %q", location),
			"use a directory path or an s3://bucket/prefix URI")
	}
	return Dir(location), nil
}

func missing(err error, table string, where string) error {
	return errors.WithHintf(errors.Mark(errors.Wrapf(err, "open %s", FileName(table)), errors.ErrIntegrity),
		"every catalog table needs a %s file in %s", FileName(table), where)
}
