package revtext

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Codec converts an arbitrary serializable value to and from its text
// representation, the form SnapshotGraph actually diffs and stores.
type Codec interface {
	Encode(value any) (string, error)
	Decode(text string) (any, error)
}

// BlobStore persists named byte blobs, e.g. a serialized SnapshotGraph
// container, outside process memory.
type BlobStore interface {
	Save(name string, r io.Reader) error
	Load(name string) (io.ReadCloser, error)
}

// RepositoryFacade is the single entry point callers use to snapshot,
// restore, diff, and patch serializable values, hiding the SnapshotGraph,
// Codec, and PatchEngine wiring behind one API.
type RepositoryFacade struct {
	graph   *SnapshotGraph
	codec   Codec
	patches *PatchEngine
	logger  *slog.Logger
}

// NewRepositoryFacade builds a RepositoryFacade over a Codec, an optional
// BlobCompressor (nil stores deltas uncompressed), and an optional logger
// (nil defaults to slog.Default()).
func NewRepositoryFacade(codec Codec, compressor BlobCompressor, logger *slog.Logger) *RepositoryFacade {
	if logger == nil {
		logger = slog.Default()
	}
	patches := NewPatchEngine()
	return &RepositoryFacade{
		graph:   NewSnapshotGraph(patches, compressor, logger),
		codec:   codec,
		patches: patches,
		logger:  logger,
	}
}

// MakeSnapshot encodes value via the Codec and records it as a new
// snapshot, returning its RevId.
func (r *RepositoryFacade) MakeSnapshot(value any, at time.Time) (RevId, error) {
	text, err := r.codec.Encode(value)
	if err != nil {
		return "", fmt.Errorf("%w: encoding snapshot: %v", ErrCodecFailure, err)
	}
	return r.graph.MakeSnapshot(text, at)
}

// RestoreSnapshot reconstructs the text stored at rev and decodes it back
// into a value via the Codec.
func (r *RepositoryFacade) RestoreSnapshot(rev RevId) (any, error) {
	text, err := r.graph.RestoreText(rev)
	if err != nil {
		return nil, err
	}
	value, err := r.codec.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding snapshot %s: %v", ErrCodecFailure, rev, err)
	}
	return value, nil
}

// ApplyPatch restores the latest snapshot, applies patch against its text,
// records the result as a new snapshot, and returns the decoded value.
func (r *RepositoryFacade) ApplyPatch(patch PatchList) (any, error) {
	latest := r.graph.LatestRev()
	if latest == "" {
		return nil, fmt.Errorf("%w: no snapshots to patch", ErrRevisionNotFound)
	}
	text, err := r.graph.RestoreText(latest)
	if err != nil {
		return nil, err
	}
	applied, results, err := r.patches.Apply(patch, text)
	if err != nil {
		return nil, err
	}
	for _, ok := range results {
		if !ok {
			r.logger.Warn("revtext: a hunk did not apply cleanly", "against", latest)
		}
	}
	if _, err := r.graph.MakeSnapshot(applied, time.Now()); err != nil {
		return nil, err
	}
	value, err := r.codec.Decode(applied)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding patched result: %v", ErrCodecFailure, err)
	}
	return value, nil
}

// PatchBetween computes the patch list transforming rev1's text into
// rev2's text, serialized with PatchCodec's portable text form.
func (r *RepositoryFacade) PatchBetween(rev1, rev2 RevId) ([]byte, error) {
	text1, err := r.graph.RestoreText(rev1)
	if err != nil {
		return nil, err
	}
	text2, err := r.graph.RestoreText(rev2)
	if err != nil {
		return nil, err
	}
	patches, err := r.patches.Make(text1, text2)
	if err != nil {
		return nil, err
	}
	return []byte(PatchToText(patches)), nil
}

// RevisionBefore returns the most recent revision created at or before t.
func (r *RepositoryFacade) RevisionBefore(t time.Time) (RevId, error) {
	return r.graph.RevisionBefore(t)
}

// LatestRev returns the most recently recorded revision.
func (r *RepositoryFacade) LatestRev() RevId {
	return r.graph.LatestRev()
}

// History returns all recorded revisions, oldest first.
func (r *RepositoryFacade) History() []RevId {
	return r.graph.History()
}
