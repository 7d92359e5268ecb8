// Package storage keeps uploaded font files.
package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FontsPrefix is the key prefix every font file lives under.
const FontsPrefix = "fonts"

// fontDirNamespace seeds the stable per-record directory names.
var fontDirNamespace = uuid.MustParse("6f1c5b0e-2d7a-4c8e-9a41-3b7f0d2e8c15")

// Backend stores files under slash-separated keys such as
// "fonts/<dir>/regular.woff2".
type Backend interface {
	// Save writes r to key, replacing any existing file.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// List returns every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// URL returns the public URL of key.
	URL(key string) string
}

// FontDir returns the key prefix holding the files of record id. It is
// stable for an id and does not reveal it.
func FontDir(id int) string {
	hash := uuid.NewSHA1(fontDirNamespace, []byte(strconv.Itoa(id)))
	return path.Join(FontsPrefix, strings.ReplaceAll(hash.String(), "-", "")[:16])
}

// DirURL returns the URL prefix, with trailing slash, under which the files of
// record id are served.
func DirURL(b Backend, id int) string {
	return strings.TrimSuffix(b.URL(FontDir(id)), "/") + "/"
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
