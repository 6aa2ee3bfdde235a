// Package blobcompress provides concrete revtext.BlobCompressor
// implementations.
//
// No third-party compression library appears anywhere in the example
// corpus (no klauspost/compress, zstd, snappy, or lz4 dependency exists in
// any of the reference repos), so this adapter is built on the standard
// library's compress/gzip rather than an ecosystem package.
package blobcompress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// GzipCompressor compresses delta and snapshot text with gzip at a fixed
// compression level.
type GzipCompressor struct {
	// Level is the gzip compression level; 0 uses gzip.DefaultCompression.
	Level int
}

// NewGzipCompressor returns a GzipCompressor using gzip.DefaultCompression.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{}
}

func (c *GzipCompressor) Compress(text string) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("blobcompress: opening gzip writer: %w", err)
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("blobcompress: writing gzip stream: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("blobcompress: closing gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *GzipCompressor) Decompress(data []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("blobcompress: opening gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("blobcompress: reading gzip stream: %w", err)
	}
	return string(out), nil
}
