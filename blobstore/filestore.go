// Package blobstore provides a concrete revtext.BlobStore implementation:
// a single checksummed container file per blob, written atomically.
//
// The container format is adapted from lightpatch.go's own patch-stream
// framing, which trails its op stream with a 'K' marker followed by a
// CRC32 of the reconstructed output. Here the same crc32.ChecksumIEEE
// check guards an opaque blob instead of a specific op stream, since a
// BlobStore has no op stream of its own to frame.
package blobstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ErrChecksumMismatch reports a blob whose trailing CRC32 does not match
// its contents, e.g. from a truncated or corrupted write.
var ErrChecksumMismatch = fmt.Errorf("blobstore: checksum mismatch")

// FileBlobStore persists blobs as files under Dir, one file per name.
type FileBlobStore struct {
	Dir string
}

// NewFileBlobStore returns a FileBlobStore rooted at dir. The directory
// must already exist.
func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{Dir: dir}
}

func (s *FileBlobStore) path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Save writes the contents of r as name's container file: a 4-byte
// big-endian length prefix, the payload, and a trailing CRC32 checksum of
// the payload, written atomically via a temp-file-then-rename so a reader
// never observes a partial container.
func (s *FileBlobStore) Save(name string, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("blobstore: reading blob %s: %w", name, err)
	}

	var buf bytes.Buffer
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(payload)))
	buf.Write(lenPrefix[:])
	buf.Write(payload)

	sum := crc32.ChecksumIEEE(payload)
	var sumBytes [4]byte
	binary.BigEndian.PutUint32(sumBytes[:], sum)
	buf.Write(sumBytes[:])

	if err := atomic.WriteFile(s.path(name), &buf); err != nil {
		return fmt.Errorf("blobstore: writing blob %s: %w", name, err)
	}
	return nil
}

// Load reads name's container file back, verifying its trailing CRC32
// before returning the payload.
func (s *FileBlobStore) Load(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("blobstore: opening blob %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("blobstore: reading blob %s: %w", name, err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("blobstore: blob %s too short for its container framing", name)
	}

	length := binary.BigEndian.Uint32(data[:4])
	if int(length) != len(data)-8 {
		return nil, fmt.Errorf("blobstore: blob %s length prefix %d does not match payload size %d", name, length, len(data)-8)
	}
	payload := data[4 : len(data)-4]
	wantSum := binary.BigEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != wantSum {
		return nil, fmt.Errorf("%w: blob %s", ErrChecksumMismatch, name)
	}

	return io.NopCloser(bytes.NewReader(payload)), nil
}
