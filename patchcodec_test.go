package revtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPatchToTextFromTextRoundTrip(t *testing.T) {
	pe := NewPatchEngine()
	patches, err := pe.Make("The quick brown fox jumps over the lazy dog.", "That quick brown fox jumped over a lazy dog.")
	assert.NoError(t, err)

	text := PatchToText(patches)
	roundTripped, err := PatchFromText(text)
	assert.NoError(t, err)

	if diff := cmp.Diff(patches, roundTripped); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchFromTextRejectsMalformedHeader(t *testing.T) {
	_, err := PatchFromText("not a patch header\n")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPatchFromTextEmpty(t *testing.T) {
	patches, err := PatchFromText("")
	assert.NoError(t, err)
	assert.Empty(t, patches)
}

func TestPatchFromTextRejectsBadLinePrefix(t *testing.T) {
	_, err := PatchFromText("@@ -1,3 +1,3 @@\n*bad\n")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
