package revtext

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// RevId identifies a single snapshot: the hex SHA-1 of its restored text.
type RevId string

// nearestRange bounds how many of the revisions that follow a given snapshot
// in history Optimize considers as compaction targets for it (at most
// nearestRange-1 of them), trading compaction thoroughness for bounded work
// per call.
const nearestRange = 12

// snapshotEntry is the tagged union a SnapshotGraph stores per revision:
// either a complete restored text, or a reverse delta against a later
// ("future", since deltas always point forward in storage order) revision.
type snapshotEntry struct {
	complete bool
	text     string // valid when complete

	futureRev       RevId  // valid when !complete
	compressedPatch []byte // compressed PatchCodec.ToText output, valid when !complete
}

// BlobCompressor compresses and decompresses the text a SnapshotGraph and
// RepositoryFacade store, so large patch/snapshot bodies take less memory
// and (via a BlobStore) less disk.
type BlobCompressor interface {
	Compress(text string) ([]byte, error)
	Decompress(data []byte) (string, error)
}

// SnapshotGraph stores a sequence of text snapshots. Its most recent member
// is kept as complete text; an older snapshot is stored as a reverse patch
// against a newer one whenever that patch is strictly smaller than its
// current entry, and otherwise stays as complete text. Older snapshots are
// re-linked to newer ones as new snapshots arrive.
type SnapshotGraph struct {
	history   []RevId
	snapshots map[RevId]*snapshotEntry
	createdAt map[RevId]time.Time

	patches    *PatchEngine
	compressor BlobCompressor
	logger     *slog.Logger
}

// NewSnapshotGraph returns an empty SnapshotGraph. A nil compressor stores
// patch bodies uncompressed; a nil logger defaults to slog.Default().
func NewSnapshotGraph(patches *PatchEngine, compressor BlobCompressor, logger *slog.Logger) *SnapshotGraph {
	if patches == nil {
		patches = NewPatchEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotGraph{
		snapshots:  map[RevId]*snapshotEntry{},
		createdAt:  map[RevId]time.Time{},
		patches:    patches,
		compressor: compressor,
		logger:     logger,
	}
}

func computeRevId(text string) RevId {
	sum := sha1.Sum([]byte(text))
	return RevId(hex.EncodeToString(sum[:]))
}

// MakeSnapshot records text as a new complete snapshot, compacting the
// previous head into a reverse delta against it when that delta is smaller,
// then runs Optimize, and returns its RevId. If
// text has already been recorded verbatim, returns its existing RevId and
// records no new history entry.
func (g *SnapshotGraph) MakeSnapshot(text string, at time.Time) (RevId, error) {
	rev := computeRevId(text)
	if _, ok := g.snapshots[rev]; ok {
		return rev, nil
	}

	if len(g.history) > 0 {
		prevRev := g.history[len(g.history)-1]
		prevEntry := g.snapshots[prevRev]
		if prevEntry.complete {
			if err := g.compactIfSmaller(prevRev, prevEntry, prevEntry.text, rev, text); err != nil {
				return "", err
			}
		}
	}

	g.snapshots[rev] = &snapshotEntry{complete: true, text: text}
	g.history = append(g.history, rev)
	g.createdAt[rev] = at

	g.Optimize()

	return rev, nil
}

// sizeOf is the byte size spec.md's size() sums over all snapshots:
// |text| for a Complete entry, |compressed_patch| for a Delta one.
func sizeOf(entry *snapshotEntry) int {
	if entry.complete {
		return len(entry.text)
	}
	return len(entry.compressedPatch)
}

// buildDelta computes the reverse-delta snapshotEntry that would reconstruct
// fromText starting from toText, without touching the graph.
func (g *SnapshotGraph) buildDelta(fromRev RevId, fromText string, toRev RevId, toText string) (*snapshotEntry, error) {
	patches, err := g.patches.Make(toText, fromText)
	if err != nil {
		return nil, fmt.Errorf("revtext: compacting %s against %s: %w", fromRev, toRev, err)
	}
	encoded := PatchToText(patches)
	var blob []byte
	if g.compressor != nil {
		blob, err = g.compressor.Compress(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: compressing delta for %s: %v", ErrCodecFailure, fromRev, err)
		}
	} else {
		blob = []byte(encoded)
	}
	return &snapshotEntry{futureRev: toRev, compressedPatch: blob}, nil
}

// compactIfSmaller replaces snapshots[fromRev] with a reverse delta against
// toRev only if the delta is strictly smaller than fromRev's current entry,
// per spec.md §4.5 step 3. If it isn't, fromRev is left untouched and no
// error is reported — compaction never fails the caller.
func (g *SnapshotGraph) compactIfSmaller(fromRev RevId, fromEntry *snapshotEntry, fromText string, toRev RevId, toText string) error {
	candidate, err := g.buildDelta(fromRev, fromText, toRev, toText)
	if err != nil {
		g.logger.Warn("revtext: skipped compaction", "rev", fromRev, "against", toRev, "err", err)
		return nil
	}
	if sizeOf(candidate) >= sizeOf(fromEntry) {
		return nil
	}
	g.snapshots[fromRev] = candidate
	g.logger.Debug("revtext: compacted snapshot into reverse delta", "rev", fromRev, "against", toRev)
	return nil
}

// RestoreText reconstructs the text of rev, walking forward through any
// chain of reverse deltas until it reaches a complete snapshot.
func (g *SnapshotGraph) RestoreText(rev RevId) (string, error) {
	entry, ok := g.snapshots[rev]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
	}

	var chain []*snapshotEntry
	for !entry.complete {
		chain = append(chain, entry)
		next, ok := g.snapshots[entry.futureRev]
		if !ok {
			return "", fmt.Errorf("%w: delta chain broken at %s", ErrRevisionNotFound, entry.futureRev)
		}
		entry = next
	}

	text := entry.text
	for i := len(chain) - 1; i >= 0; i-- {
		encoded, err := g.decodeDelta(chain[i].compressedPatch)
		if err != nil {
			return "", err
		}
		patches, err := PatchFromText(encoded)
		if err != nil {
			return "", fmt.Errorf("%w: parsing stored delta: %v", ErrCodecFailure, err)
		}
		applied, results, err := g.patches.Apply(patches, text)
		if err != nil {
			return "", err
		}
		for _, ok := range results {
			if !ok {
				g.logger.Warn("revtext: a hunk in the delta chain did not apply cleanly during restore")
			}
		}
		text = applied
	}
	return text, nil
}

func (g *SnapshotGraph) decodeDelta(blob []byte) (string, error) {
	if g.compressor != nil {
		text, err := g.compressor.Decompress(blob)
		if err != nil {
			return "", fmt.Errorf("%w: decompressing delta: %v", ErrCodecFailure, err)
		}
		return text, nil
	}
	return string(blob), nil
}

// LatestRev returns the most recently created revision, or "" if the graph
// is empty.
func (g *SnapshotGraph) LatestRev() RevId {
	if len(g.history) == 0 {
		return ""
	}
	return g.history[len(g.history)-1]
}

// History returns the revisions in creation order, oldest first.
func (g *SnapshotGraph) History() []RevId {
	out := make([]RevId, len(g.history))
	copy(out, g.history)
	return out
}

// Size reports the total byte size of the graph's stored form: the sum
// over all snapshots of sizeOf(snapshot), per spec.md §4.5's size().
func (g *SnapshotGraph) Size() int {
	total := 0
	for _, entry := range g.snapshots {
		total += sizeOf(entry)
	}
	return total
}

// Count reports the number of distinct revisions recorded.
func (g *SnapshotGraph) Count() int {
	return len(g.history)
}

// RevisionBefore returns the most recent revision with created_at <= t.
// Returns ErrRevisionNotFound if no such revision exists.
func (g *SnapshotGraph) RevisionBefore(t time.Time) (RevId, error) {
	var best RevId
	var bestAt time.Time
	found := false
	for _, rev := range g.history {
		at := g.createdAt[rev]
		if !at.After(t) && (!found || at.After(bestAt)) {
			best = rev
			bestAt = at
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("%w: no revision before %s", ErrRevisionNotFound, t)
	}
	return best, nil
}

// Optimize considers, for every revision at index i, rewriting it as a
// reverse delta keyed on any of the up to nearestRange-1 revisions at
// indices i+1..i+nearestRange-1, replacing it with whichever of those
// candidate targets yields the smallest encoded result strictly smaller
// than its current size, per spec.md §4.5's optimization pass. "Nearest"
// means nearest in insertion order within history, a deterministic notion
// independent of map iteration order. The last revision in history has no
// successor to re-key against and is left untouched.
func (g *SnapshotGraph) Optimize() {
	for i := 0; i < len(g.history)-1; i++ {
		rev := g.history[i]
		entry := g.snapshots[rev]
		currentSize := sizeOf(entry)

		text, err := g.RestoreText(rev)
		if err != nil {
			continue
		}

		end := i + nearestRange - 1
		if end > len(g.history)-1 {
			end = len(g.history) - 1
		}

		var best *snapshotEntry
		var bestTarget RevId
		bestSize := currentSize

		for j := i + 1; j <= end; j++ {
			targetRev := g.history[j]
			if !entry.complete && entry.futureRev == targetRev {
				continue
			}
			targetText, err := g.RestoreText(targetRev)
			if err != nil {
				continue
			}
			candidate, err := g.buildDelta(rev, text, targetRev, targetText)
			if err != nil {
				continue
			}
			if size := sizeOf(candidate); size < bestSize {
				bestSize = size
				best = candidate
				bestTarget = targetRev
			}
		}

		if best == nil {
			continue
		}
		g.snapshots[rev] = best
		g.logger.Debug("revtext: re-pointed delta to a nearer, smaller target", "rev", rev, "new_target", bestTarget)
	}
}
