// Package storage is the output sink for rendered rolls. Images go either to
// a local directory or to an S3 compatible bucket; callers only see FileStore.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// FileStore writes and removes named objects.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Write opens the named file for writing, truncating an existing one.
	// Data is only complete once Close returns nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// Location describes where a path ends up, for logs and reports.
	Location(path string) string
}

const s3Scheme = "s3://"

// Open returns the store for an output_directory setting: a local directory,
// or s3://bucket/prefix. Bucket access is configured from the environment,
// see ClientFromEnv.
func Open(outputDirectory string) (FileStore, error) {
	if !strings.HasPrefix(outputDirectory, s3Scheme) {
		if outputDirectory == "" {
			outputDirectory = "."
		}
		return NewLocal(outputDirectory)
	}

	bucket, prefix, err := ParseS3URL(outputDirectory)
	if err != nil {
		return nil, err
	}
	return NewS3(ClientFromEnv(), bucket, prefix), nil
}

// ParseS3URL splits s3://bucket/some/prefix into bucket and prefix. The
// prefix carries no leading or trailing slash.
func ParseS3URL(u string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(u, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("storage: %q is not an s3 url", u)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("storage: %q has no bucket", u)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
