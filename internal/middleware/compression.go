// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// uncompressedPaths negotiate their own encoding.
var uncompressedPaths = map[string]bool{"/metrics": true}

var gzipPool = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

// gzipWriter routes the body through a pooled gzip.Writer. The upstream
// Content-Length is dropped since it describes the uncompressed body.
type gzipWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	started bool
}

func (g *gzipWriter) WriteHeader(status int) {
	if g.started {
		return
	}
	g.started = true
	h := g.ResponseWriter.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	g.ResponseWriter.WriteHeader(status)
}

func (g *gzipWriter) Write(p []byte) (int, error) {
	g.WriteHeader(http.StatusOK)
	return g.gz.Write(p)
}

// Flush pushes buffered compressed bytes to the client.
func (g *gzipWriter) Flush() {
	_ = g.gz.Flush() //nolint:errcheck // surfaced by the next Write
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(coding, "gzip") {
			return true
		}
	}
	return false
}

// Compression gzips responses for clients that send Accept-Encoding: gzip.
// Recommendation lists carrying reasoning strings shrink several-fold.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uncompressedPaths[r.URL.Path] || !acceptsGzip(r) {
			next.ServeHTTP(w, r)
			return
		}

		gz, _ := gzipPool.Get().(*gzip.Writer) //nolint:errcheck // pool only holds *gzip.Writer
		gz.Reset(w)
		gw := &gzipWriter{ResponseWriter: w, gz: gz}
		defer func() {
			if gw.started {
				_ = gz.Close() //nolint:errcheck // headers already sent
			}
			gzipPool.Put(gz)
		}()

		next.ServeHTTP(gw, r)
	})
}
