package blobcompress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGzipCompressorRoundTrip(t *testing.T) {
	c := NewGzipCompressor()

	data, err := c.Compress("hello, revtext")
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	text, err := c.Decompress(data)
	assert.NoError(t, err)
	assert.Equal(t, "hello, revtext", text)
}

func TestGzipCompressorDecompressInvalid(t *testing.T) {
	c := NewGzipCompressor()
	_, err := c.Decompress([]byte("not gzip data"))
	assert.Error(t, err)
}
