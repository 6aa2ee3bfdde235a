package revtext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotGraphCompactionRestoresOldAndNew(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)

	s1 := "Wow"
	s2 := "World of Warcraft"
	s3 := s2 + "\n2"
	s4 := s2 + "\n3"
	s5 := "Wow\n3"

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rev1, err := g.MakeSnapshot(s1, base)
	assert.NoError(t, err)
	_, err = g.MakeSnapshot(s2, base.Add(time.Minute))
	assert.NoError(t, err)
	rev2Text := s2
	_, err = g.MakeSnapshot(s3, base.Add(2*time.Minute))
	assert.NoError(t, err)
	_, err = g.MakeSnapshot(s4, base.Add(3*time.Minute))
	assert.NoError(t, err)
	_, err = g.MakeSnapshot(s5, base.Add(4*time.Minute))
	assert.NoError(t, err)

	restored1, err := g.RestoreText(rev1)
	assert.NoError(t, err)
	assert.Equal(t, "Wow", restored1)

	rev2 := computeRevId(rev2Text)
	pe := NewPatchEngine()
	patches, err := pe.Make(restored1, rev2Text)
	assert.NoError(t, err)

	latest, err := g.RestoreText(g.LatestRev())
	assert.NoError(t, err)
	assert.Equal(t, s5, latest)

	applied, _, err := pe.Apply(patches, latest)
	assert.NoError(t, err)
	assert.Equal(t, s4, applied)
	_ = rev2
}

func TestSnapshotGraphRevisionBefore(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	d := t2.Add(time.Hour)
	t3 := d.Add(time.Hour)

	_, err := g.MakeSnapshot("one", t1)
	assert.NoError(t, err)
	rev2, err := g.MakeSnapshot("two", t2)
	assert.NoError(t, err)
	_, err = g.MakeSnapshot("three", t3)
	assert.NoError(t, err)

	got, err := g.RevisionBefore(d)
	assert.NoError(t, err)
	assert.Equal(t, rev2, got)
}

func TestSnapshotGraphRevisionBeforeNotFound(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)
	_, err := g.MakeSnapshot("one", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	_, err = g.RevisionBefore(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestSnapshotGraphSizeIsByteSum(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := g.MakeSnapshot("Wow", base)
	assert.NoError(t, err)

	want := 0
	for _, entry := range g.snapshots {
		want += sizeOf(entry)
	}
	assert.Equal(t, want, g.Size())
	assert.Equal(t, 1, g.Count())
}

func TestSnapshotGraphCompactionSkippedWhenNotSmaller(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rev1, err := g.MakeSnapshot("Wow", base)
	assert.NoError(t, err)
	_, err = g.MakeSnapshot("World of Warcraft", base.Add(time.Minute))
	assert.NoError(t, err)

	entry := g.snapshots[rev1]
	assert.True(t, entry.complete)
	assert.Equal(t, "Wow", entry.text)
}

func TestSnapshotGraphRestoreUnknownRevision(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)
	_, err := g.RestoreText("deadbeef")
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestSnapshotGraphDuplicateTextReturnsSameRev(t *testing.T) {
	g := NewSnapshotGraph(nil, nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rev1, err := g.MakeSnapshot("same", base)
	assert.NoError(t, err)
	rev2, err := g.MakeSnapshot("same", base.Add(time.Minute))
	assert.NoError(t, err)

	assert.Equal(t, rev1, rev2)
	assert.Equal(t, 1, g.Count())
}
