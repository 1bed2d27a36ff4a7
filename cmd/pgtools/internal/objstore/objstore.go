// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package objstore moves index files to and from Google Cloud Storage so
// `pgtools index -o gs://...` and `pgtools query -x gs://...` work.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Scheme prefixes object URIs.
const Scheme = "gs://"

// ErrInvalidURI is returned for a malformed gs:// URI.
var ErrInvalidURI = errors.New("invalid object URI")

// URI names one object.
type URI struct {
	Bucket string
	Object string
}

// String renders gs://bucket/object.
func (u URI) String() string {
	return Scheme + u.Bucket + "/" + u.Object
}

// IsRemote reports whether s is a gs:// URI.
func IsRemote(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseURI splits gs://bucket/object. Both parts are required.
func ParseURI(s string) (URI, error) {
	if !IsRemote(s) {
		return URI{}, fmt.Errorf("%w: %q lacks %s prefix", ErrInvalidURI, s, Scheme)
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(s, Scheme), "/")
	if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return URI{}, fmt.Errorf("%w: %q must be gs://BUCKET/OBJECT", ErrInvalidURI, s)
	}
	return URI{Bucket: bucket, Object: object}, nil
}

// Client wraps a GCS client.
type Client struct {
	storageClient *storage.Client
}

// NewClient creates a client. With credentialsFile empty, Application
// Default Credentials are used.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path: %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS storage client: %w", err)
	}
	return &Client{storageClient: storageClient}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

// Upload copies localPath to dst.
func (c *Client) Upload(ctx context.Context, localPath string, dst URI) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	w := c.storageClient.Bucket(dst.Bucket).Object(dst.Object).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.CacheControl = "no-cache, no-store, must-revalidate"

	n, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return n, fmt.Errorf("copy %s to %s: %w", localPath, dst, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("finalize %s: %w", dst, err)
	}
	return n, nil
}

// Download copies src into dir and returns the local path. The file keeps
// the object's base name.
func (c *Client) Download(ctx context.Context, src URI, dir string) (string, error) {
	r, err := c.storageClient.Bucket(src.Bucket).Object(src.Object).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer r.Close()

	return writeLocal(r, dir, filepath.Base(src.Object))
}

// writeLocal streams r into dir/name through a temp file and rename.
func writeLocal(r io.Reader, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, name+".part-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}
	return dst, nil
}
