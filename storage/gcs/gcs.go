// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs reads benchmark records from a Google Cloud Storage
// bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/wfbench/streamperf/benchrec"
)

// Options configure the storage client.
type Options struct {
	// Token is an OAuth2 access token. If empty, application
	// default credentials are used.
	Token string

	// Endpoint overrides the storage API endpoint.
	Endpoint string

	// Anonymous disables authentication, for public buckets.
	Anonymous bool
}

func (o Options) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case o.Anonymous:
		opts = append(opts, option.WithoutAuthentication())
	case o.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.Token, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	return opts
}

// A Source is a benchrec.Source over the objects directly under a
// prefix of a bucket.
type Source struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

var _ benchrec.Source = (*Source)(nil)

// ParseURL splits a "gs://bucket/prefix" URL. The returned prefix is
// empty or ends in a slash.
func ParseURL(rawURL string) (bucket, prefix string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "gs" || u.Host == "" {
		return "", "", fmt.Errorf("%q is not a gs://bucket/prefix URL", rawURL)
	}
	prefix = strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return u.Host, prefix, nil
}

// Open returns a Source for a "gs://bucket/prefix" URL. The caller
// must Close it.
func Open(ctx context.Context, rawURL string, opts Options) (*Source, error) {
	bucket, prefix, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Source{client: client, bucket: client.Bucket(bucket), prefix: prefix}, nil
}

// List implements benchrec.Source.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix, Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Prefix != "" {
			// A synthetic directory entry.
			continue
		}
		keys = append(keys, attrs.Name)
	}
	return benchrec.ObjectNames(s.prefix, keys), nil
}

// Open implements benchrec.Source.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(s.prefix + name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return r, err
}

// Close releases the storage client.
func (s *Source) Close() error {
	return s.client.Close()
}
