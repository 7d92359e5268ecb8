package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"fonto/internal/version"

	"github.com/studio-b12/gowebdav"
)

// WebDAVOptions configures a WebDAV share.
type WebDAVOptions struct {
	URL      string
	User     string
	Password string
	// PublicURL is the base URL files are served from.
	PublicURL string
}

// WebDAV stores files on a WebDAV share.
type WebDAV struct {
	client    *gowebdav.Client
	publicURL string
}

// NewWebDAV creates a WebDAV backend.
func NewWebDAV(opts WebDAVOptions) (*WebDAV, error) {
	if opts.URL == "" {
		return nil, errors.New("WebDAV URL not configured")
	}
	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = opts.URL
	}
	client := gowebdav.NewClient(opts.URL, opts.User, opts.Password)
	client.SetHeader("User-Agent", version.UserAgent())
	return &WebDAV{client: client, publicURL: publicURL}, nil
}

func (b *WebDAV) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := b.client.MkdirAll(path.Dir(key), 0755); err != nil {
		return fmt.Errorf("webdav mkdir failed: %w", err)
	}
	if err := b.client.WriteStream(key, r, 0644); err != nil {
		return fmt.Errorf("webdav upload failed: %w", err)
	}
	return nil
}

func (b *WebDAV) Remove(_ context.Context, key string) error {
	if err := b.client.Remove(key); err != nil && !gowebdav.IsErrNotFound(err) {
		return fmt.Errorf("webdav delete failed: %w", err)
	}
	return nil
}

func (b *WebDAV) List(ctx context.Context, prefix string) ([]string, error) {
	infos, err := b.client.ReadDir(prefix)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("webdav list failed: %w", err)
	}

	var keys []string
	for _, info := range infos {
		key := path.Join(prefix, info.Name())
		if !info.IsDir() {
			keys = append(keys, key)
			continue
		}
		sub, err := b.List(ctx, key)
		if err != nil {
			return nil, err
		}
		keys = append(keys, sub...)
	}
	return keys, nil
}

func (b *WebDAV) URL(key string) string {
	return joinURL(b.publicURL, key)
}
