// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfbench/streamperf/benchrec"
)

func TestParseURL(t *testing.T) {
	bucket, prefix, err := ParseURL("s3://bench/nightly")
	require.NoError(t, err)
	require.Equal(t, "bench", bucket)
	require.Equal(t, "nightly/", prefix)

	_, _, err = ParseURL("gs://bench/nightly")
	require.Error(t, err)
}

// fakeS3 serves path-style ListObjectsV2 and GetObject for one bucket.
func fakeS3(bucket string, objects map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+bucket || r.URL.Path == "/"+bucket+"/" {
			prefix := r.URL.Query().Get("prefix")
			var keys []string
			for k := range objects {
				if strings.HasPrefix(k, prefix) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			var b strings.Builder
			fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>`)
			fmt.Fprintf(&b, `<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
			fmt.Fprintf(&b, `<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><IsTruncated>false</IsTruncated>`, bucket, prefix, len(keys))
			for _, k := range keys {
				fmt.Fprintf(&b, `<Contents><Key>%s</Key><Size>%d</Size></Contents>`, k, len(objects[k]))
			}
			fmt.Fprintf(&b, `</ListBucketResult>`)
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(b.String()))
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/"+bucket+"/")
		body, ok := objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`))
			return
		}
		w.Write([]byte(body))
	}))
}

func TestSource(t *testing.T) {
	srv := fakeS3("bench", map[string]string{
		"nightly/metric-throughput-1.json":  `{"name": "throughput", "mean": 2.5}`,
		"nightly/metric-latency-1.json":     `{"name": "latency", "mean": 1}`,
		"nightly/archive/metric-old-1.json": `{"name": "old", "mean": 1}`,
		"nightly/notes.txt":                 "ignored",
	})
	defer srv.Close()

	none := filepath.Join(t.TempDir(), "none")
	t.Setenv("AWS_CONFIG_FILE", none)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", none)
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	ctx := context.Background()
	src, err := Open(ctx, "s3://bench/nightly", Options{
		Region:       "us-east-1",
		Endpoint:     srv.URL,
		UsePathStyle: true,
	})
	require.NoError(t, err)

	names, err := src.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"metric-latency-1.json", "metric-throughput-1.json"}, names)

	st, bad, err := benchrec.Load(ctx, src)
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Equal(t, []string{"latency", "throughput"}, st.Names())

	_, err = src.Open(ctx, "metric-missing-1.json")
	require.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}
