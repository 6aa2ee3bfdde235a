package revtext

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonPrefixLength(t *testing.T) {
	type TestCase struct {
		Text1    string
		Text2    string
		Expected int
	}

	for i, tc := range []TestCase{
		{"abc", "xyz", 0},
		{"1234abcdef", "1234xyz", 4},
		{"1234", "1234xyz", 4},
	} {
		actual := commonPrefixLength([]rune(tc.Text1), []rune(tc.Text2))
		assert.Equal(t, tc.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, tc))
	}
}

func TestCommonSuffixLength(t *testing.T) {
	type TestCase struct {
		Text1    string
		Text2    string
		Expected int
	}

	for i, tc := range []TestCase{
		{"abc", "xyz", 0},
		{"abcdef1234", "xyz1234", 4},
		{"1234", "xyz1234", 4},
		{"123", "a3", 1},
	} {
		actual := commonSuffixLength([]rune(tc.Text1), []rune(tc.Text2))
		assert.Equal(t, tc.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, tc))
	}
}

func TestDiffBasic(t *testing.T) {
	e := NewDiffEngine()

	script, err := e.Diff("The quick brown fox jumps over the lazy dog.", "That quick brown fox jumped over a lazy dog.", true)
	assert.NoError(t, err)
	assert.Equal(t, "The quick brown fox jumps over the lazy dog.", script.Text1())
	assert.Equal(t, "That quick brown fox jumped over a lazy dog.", script.Text2())
}

func TestDiffEmptyInputs(t *testing.T) {
	e := NewDiffEngine()

	script, err := e.Diff("", "abc", false)
	assert.NoError(t, err)
	assert.Equal(t, EditScript{{OpInsert, "abc"}}, script)

	script, err = e.Diff("abc", "", false)
	assert.NoError(t, err)
	assert.Equal(t, EditScript{{OpDelete, "abc"}}, script)

	script, err = e.Diff("", "", false)
	assert.NoError(t, err)
	assert.Empty(t, script)
}

func TestDiffToDeltaFromDeltaRoundTrip(t *testing.T) {
	e := NewDiffEngine()

	script := EditScript{
		{OpEqual, "ڀ   \t %"},
		{OpDelete, "ځ  \n ^"},
		{OpInsert, "ڂ  \\ |"},
	}

	delta := e.ToDelta(script)
	assert.Equal(t, "=7\t-7\t+%DA%82 %02 %5C %7C", delta)

	roundTripped, err := e.FromDelta(script.Text1(), delta)
	assert.NoError(t, err)
	assert.Equal(t, script, roundTripped)
}

func TestDiffFromDeltaRejectsMalformed(t *testing.T) {
	e := NewDiffEngine()

	_, err := e.FromDelta("abc", "=2\t=5")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.FromDelta("abc", "?3")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDiffLevenshtein(t *testing.T) {
	type TestCase struct {
		Script   EditScript
		Expected int
	}

	for i, tc := range []TestCase{
		{EditScript{{OpEqual, "abc"}, {OpInsert, "1234"}, {OpEqual, "xyz"}}, 4},
		{EditScript{{OpEqual, "abc"}, {OpDelete, "1234"}, {OpEqual, "xyz"}}, 4},
		{EditScript{{OpDelete, "abc"}, {OpInsert, "1234"}}, 4},
	} {
		assert.Equal(t, tc.Expected, tc.Script.Levenshtein(), fmt.Sprintf("Test case #%d", i))
	}
}

func TestCleanupSemanticEliminatesTrivialEquality(t *testing.T) {
	e := NewDiffEngine()
	diffs := EditScript{
		{OpDelete, "ab"},
		{OpEqual, "cd"},
		{OpDelete, "e"},
		{OpEqual, "f"},
		{OpInsert, "g"},
	}
	cleaned := e.CleanupSemantic(diffs)
	assert.Equal(t, EditScript{
		{OpDelete, "abcdef"},
		{OpInsert, "cdfg"},
	}, cleaned)
}

func TestCleanupMergeCoalescesRuns(t *testing.T) {
	e := NewDiffEngine()
	diffs := EditScript{
		{OpEqual, "a"},
		{OpDelete, "b"},
		{OpInsert, "c"},
		{OpInsert, "d"},
		{OpEqual, "e"},
		{OpEqual, "f"},
	}
	merged := e.CleanupMerge(diffs)
	assert.Equal(t, EditScript{
		{OpEqual, "a"},
		{OpDelete, "b"},
		{OpInsert, "cd"},
		{OpEqual, "ef"},
	}, merged)
}

func TestBoundaryScoreEdges(t *testing.T) {
	assert.Equal(t, 5, boundaryScore("", "anything"))
	assert.Equal(t, 5, boundaryScore("anything", ""))
	assert.True(t, boundaryScore("word", "word") < boundaryScore("word ", "word"))
}

func TestXIndex(t *testing.T) {
	script := EditScript{
		{OpDelete, "a"},
		{OpInsert, "1234"},
		{OpEqual, "xyz"},
	}
	assert.Equal(t, 5, script.XIndex(2))
}
