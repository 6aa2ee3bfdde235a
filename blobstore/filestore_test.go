package blobstore

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileBlobStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileBlobStore(dir)

	err := s.Save("blob1", strings.NewReader("payload contents"))
	assert.NoError(t, err)

	r, err := s.Load("blob1")
	assert.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "payload contents", string(data))
}

func TestFileBlobStoreLoadMissing(t *testing.T) {
	dir := t.TempDir()
	s := NewFileBlobStore(dir)

	_, err := s.Load("nope")
	assert.Error(t, err)
}

func TestFileBlobStoreDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	s := NewFileBlobStore(dir)

	err := s.Save("blob1", strings.NewReader("payload contents"))
	assert.NoError(t, err)

	path := dir + "/blob1"
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = s.Load("blob1")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
