// Package posesource lists and fetches pose files. A Manifest names the files,
// a Fetcher opens one by name; the loader only depends on the two interfaces so
// the HTML directory scrape can be swapped for an explicit index or a local
// directory.
package posesource

import (
	"context"
	"io"
)

// Manifest lists the pose file names available from a source.
type Manifest interface {
	List(ctx context.Context) ([]string, error)
}

// Fetcher opens one pose file by the name the Manifest returned.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// Source is both a Manifest and a Fetcher.
type Source interface {
	Manifest
	Fetcher
}
