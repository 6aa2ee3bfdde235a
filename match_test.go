package revtext

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchExact(t *testing.T) {
	m := NewMatchEngine()

	loc, err := m.Match("abcdef", "abcdef", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, loc)

	loc, err = m.Match("", "", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, loc)

	loc, err = m.Match("abcdef", "", 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, loc)
}

func TestMatchFuzzy(t *testing.T) {
	type TestCase struct {
		Text     string
		Pattern  string
		Loc      int
		Expected int
	}

	m := &MatchEngine{Threshold: 0.5, Distance: 100, MaxBits: 32}

	for i, tc := range []TestCase{
		{"abcdefghijk", "fgh", 5, 5},
		{"abcdefghijk", "efxhi", 0, 4},
	} {
		loc, err := m.Match(tc.Text, tc.Pattern, tc.Loc)
		assert.NoError(t, err)
		assert.Equal(t, tc.Expected, loc, fmt.Sprintf("Test case #%d", i))
	}
}

func TestMatchNoneFound(t *testing.T) {
	m := &MatchEngine{Threshold: 0.1, Distance: 10, MaxBits: 32}
	loc, err := m.Match("i am the very model of a modern major general", "xyz", 0)
	assert.NoError(t, err)
	assert.Equal(t, -1, loc)
}

func TestMatchPatternTooLong(t *testing.T) {
	m := &MatchEngine{Threshold: 0.5, Distance: 100, MaxBits: 4}
	_, err := m.Match("abcdefgh", "abcdx", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMatchAlphabet(t *testing.T) {
	m := NewMatchEngine()
	alphabet := m.alphabet([]rune("abc"))
	assert.Equal(t, 4, alphabet['a'])
	assert.Equal(t, 2, alphabet['b'])
	assert.Equal(t, 1, alphabet['c'])
}
