package revtext

import (
	"fmt"
	"math"
)

// MatchEngine locates the best fuzzy occurrence of a short pattern within a
// larger text, tolerating the MatchThreshold share of errors.
type MatchEngine struct {
	// Threshold is how imperfect a match can be (0 = perfect match required,
	// 1 = any match accepted). Range 0.0..1.0.
	Threshold float64
	// Distance is how far, in characters, a match can be from its expected
	// location while still being considered a match. A larger distance
	// weighs location less in the match score.
	Distance int
	// MaxBits bounds the pattern length the Bitap algorithm can index (its
	// bitmask is built on a machine word); 0 means unlimited, matching the
	// original library's behavior of falling back to no bound.
	MaxBits int
}

// NewMatchEngine returns a MatchEngine with the package defaults.
func NewMatchEngine() *MatchEngine {
	return &MatchEngine{Threshold: 0.5, Distance: 1000, MaxBits: 32}
}

// Match locates pattern within text, expecting the match to be near loc,
// and returns its index. Returns -1 (with no error) when no sufficiently
// close match exists; returns ErrInvalidArgument when pattern is longer than
// MaxBits and the search reaches Bitap (an exact match of the whole text, an
// empty pattern, or an exact match at loc is returned before that check).
func (m *MatchEngine) Match(text, pattern string, loc int) (int, error) {
	textR := []rune(text)
	patternR := []rune(pattern)

	loc = max(0, min(loc, len(textR)))
	if runesEqual(textR, patternR) {
		return 0, nil
	}
	if len(patternR) == 0 {
		return loc, nil
	}
	if loc+len(patternR) <= len(textR) && runesEqual(textR[loc:loc+len(patternR)], patternR) {
		return loc, nil
	}
	return m.bitap(textR, patternR, loc)
}

// bitap implements the bitap fuzzy-matching algorithm: a bitmask-based
// approximate string search bounding the number of permitted errors at
// each scan position.
func (m *MatchEngine) bitap(text, pattern []rune, loc int) (int, error) {
	if m.MaxBits != 0 && len(pattern) > m.MaxBits {
		return -1, fmt.Errorf("%w: pattern length %d exceeds MaxBits %d", ErrInvalidArgument, len(pattern), m.MaxBits)
	}

	alphabet := m.alphabet(pattern)

	scoreThreshold := m.Threshold
	if bestLoc := runesIndex(text, pattern); bestLoc != -1 {
		scoreThreshold = math.Min(m.bitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		if bestLoc2 := lastRunesIndex(text, pattern, min(loc+len(pattern), len(text))); bestLoc2 != -1 {
			scoreThreshold = math.Min(m.bitapScore(0, bestLoc2, loc, pattern), scoreThreshold)
		}
	}

	matchmask := 1 << uint(len(pattern)-1)
	bestLoc := -1

	var binMax int
	lastRd := []int{}
	binMin := 0
	binMax = len(pattern) + len(text)
	for d := 0; d < len(pattern); d++ {
		binMin = 0
		binMid := binMax
		for binMin < binMid {
			if m.bitapScore(d, loc+binMid, loc, pattern) <= scoreThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, loc-binMid+1)
		finish := min(loc+binMid, len(text)) + len(pattern)

		rd := make([]int, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1

		for j := finish; j >= start; j-- {
			var charMatch int
			if len(text) <= j-1 {
				charMatch = 0
			} else if cm, ok := alphabet[text[j-1]]; ok {
				charMatch = cm
			}

			if d == 0 {
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				rd[j] = (((rd[j+1] << 1) | 1) & charMatch) | (((lastRd[j+1] | lastRd[j]) << 1) | 1) | lastRd[j+1]
			}
			if rd[j]&matchmask != 0 {
				score := m.bitapScore(d, j-1, loc, pattern)
				if score <= scoreThreshold {
					scoreThreshold = score
					bestLoc = j - 1
					if bestLoc > loc {
						start = max(1, 2*loc-bestLoc)
					} else {
						break
					}
				}
			}
		}

		if m.bitapScore(d+1, loc, loc, pattern) > scoreThreshold {
			break
		}
		lastRd = rd
	}

	return bestLoc, nil
}

// bitapScore computes an error-rate score, combining the edit distance e at
// offset x with the distance between x and the expected loc.
func (m *MatchEngine) bitapScore(e, x, loc int, pattern []rune) float64 {
	accuracy := float64(e) / float64(len(pattern))
	proximity := x - loc
	if proximity < 0 {
		proximity = -proximity
	}
	if m.Distance == 0 {
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + float64(proximity)/float64(m.Distance)
}

// alphabet builds a map from rune to a bitmask of the positions at which
// that rune occurs in pattern.
func (m *MatchEngine) alphabet(pattern []rune) map[rune]int {
	s := map[rune]int{}
	for _, c := range pattern {
		s[c] = 0
	}
	for i, c := range pattern {
		value := s[c]
		value |= 1 << uint(len(pattern)-i-1)
		s[c] = value
	}
	return s
}

func lastRunesIndex(haystack, needle []rune, from int) int {
	last := -1
	for i := 0; i+len(needle) <= len(haystack) && i <= from; i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			last = i
		}
	}
	return last
}
