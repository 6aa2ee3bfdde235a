package revtext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stringCodec struct{}

func (stringCodec) Encode(value any) (string, error) {
	return value.(string), nil
}

func (stringCodec) Decode(text string) (any, error) {
	return text, nil
}

func TestRepositoryFacadeRoundTrip(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rev, err := repo.MakeSnapshot("hello world", at)
	assert.NoError(t, err)

	value, err := repo.RestoreSnapshot(rev)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", value)
}

func TestRepositoryFacadeApplyPatch(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.MakeSnapshot("hello world", at)
	assert.NoError(t, err)

	pe := NewPatchEngine()
	patches, err := pe.Make("hello world", "hello there world")
	assert.NoError(t, err)

	value, err := repo.ApplyPatch(patches)
	assert.NoError(t, err)
	assert.Equal(t, "hello there world", value)
}

func TestRepositoryFacadeApplyPatchRecordsSnapshot(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	before, err := repo.MakeSnapshot("hello world", at)
	assert.NoError(t, err)

	pe := NewPatchEngine()
	patches, err := pe.Make("hello world", "hello there world")
	assert.NoError(t, err)

	_, err = repo.ApplyPatch(patches)
	assert.NoError(t, err)

	latest := repo.LatestRev()
	assert.NotEqual(t, before, latest)

	value, err := repo.RestoreSnapshot(latest)
	assert.NoError(t, err)
	assert.Equal(t, "hello there world", value)
}

func TestRepositoryFacadeApplyPatchNoSnapshots(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)
	_, err := repo.ApplyPatch(nil)
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestRepositoryFacadeDeltaCompactionSizeWinScenario(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)

	s1 := "Wow"
	s2 := "World of Warcraft"
	s3 := s2 + "\n2"
	s4 := s2 + "\n3"
	s5 := "Wow\n3"

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rev1, err := repo.MakeSnapshot(s1, base)
	assert.NoError(t, err)
	rev2, err := repo.MakeSnapshot(s2, base.Add(time.Minute))
	assert.NoError(t, err)
	_, err = repo.MakeSnapshot(s3, base.Add(2*time.Minute))
	assert.NoError(t, err)
	_, err = repo.MakeSnapshot(s4, base.Add(3*time.Minute))
	assert.NoError(t, err)
	_, err = repo.MakeSnapshot(s5, base.Add(4*time.Minute))
	assert.NoError(t, err)

	value, err := repo.RestoreSnapshot(rev1)
	assert.NoError(t, err)
	assert.Equal(t, s1, value)

	patchBytes, err := repo.PatchBetween(rev1, rev2)
	assert.NoError(t, err)
	patches, err := PatchFromText(string(patchBytes))
	assert.NoError(t, err)

	result, err := repo.ApplyPatch(patches)
	assert.NoError(t, err)
	assert.Equal(t, s4, result)

	latestValue, err := repo.RestoreSnapshot(repo.LatestRev())
	assert.NoError(t, err)
	assert.Equal(t, s4, latestValue)
}

func TestRepositoryFacadePatchBetween(t *testing.T) {
	repo := NewRepositoryFacade(stringCodec{}, nil, nil)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rev1, err := repo.MakeSnapshot("hello world", at)
	assert.NoError(t, err)
	rev2, err := repo.MakeSnapshot("hello there world", at.Add(time.Minute))
	assert.NoError(t, err)

	patchBytes, err := repo.PatchBetween(rev1, rev2)
	assert.NoError(t, err)
	assert.Contains(t, string(patchBytes), "@@")

	patches, err := PatchFromText(string(patchBytes))
	assert.NoError(t, err)

	pe := NewPatchEngine()
	result, _, err := pe.Apply(patches, "hello world")
	assert.NoError(t, err)
	assert.Equal(t, "hello there world", result)
}
