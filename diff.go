package revtext

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Op marks whether a run of text was deleted, inserted, or left equal.
type Op int8

const (
	// OpDelete marks text present in text1 but not text2.
	OpDelete Op = -1
	// OpEqual marks text common to both text1 and text2.
	OpEqual Op = 0
	// OpInsert marks text present in text2 but not text1.
	OpInsert Op = 1
)

// Edit is a single operation on a run of text.
type Edit struct {
	Op   Op
	Text string
}

// EditScript is an ordered sequence of edits transforming one text into another.
type EditScript []Edit

// Text1 concatenates the text of edits with Op in {EQUAL, DELETE}.
func (s EditScript) Text1() string {
	var b strings.Builder
	for _, e := range s {
		if e.Op != OpInsert {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// Text2 concatenates the text of edits with Op in {EQUAL, INSERT}.
func (s EditScript) Text2() string {
	var b strings.Builder
	for _, e := range s {
		if e.Op != OpDelete {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// Levenshtein sums, over maximal non-equal runs, max(inserted, deleted) runes.
func (s EditScript) Levenshtein() int {
	levenshtein := 0
	insertions := 0
	deletions := 0
	for _, e := range s {
		switch e.Op {
		case OpInsert:
			insertions += utf8.RuneCountInString(e.Text)
		case OpDelete:
			deletions += utf8.RuneCountInString(e.Text)
		case OpEqual:
			levenshtein += max(insertions, deletions)
			insertions = 0
			deletions = 0
		}
	}
	return levenshtein + max(insertions, deletions)
}

// XIndex translates an offset in text1 to the equivalent offset in text2.
// Characters inside a deletion map to the position just after the deletion.
func (s EditScript) XIndex(loc int) int {
	chars1, chars2 := 0, 0
	lastChars1, lastChars2 := 0, 0
	var lastOp Op = OpEqual
	found := false
	for _, e := range s {
		n := utf8.RuneCountInString(e.Text)
		if e.Op != OpInsert {
			chars1 += n
		}
		if e.Op != OpDelete {
			chars2 += n
		}
		if chars1 > loc {
			lastOp = e.Op
			found = true
			break
		}
		lastChars1 = chars1
		lastChars2 = chars2
	}
	if found && lastOp == OpDelete {
		return lastChars2
	}
	return lastChars2 + (loc - lastChars1)
}

// DiffEngine computes, normalizes, and serializes edit scripts between texts.
type DiffEngine struct {
	// Timeout bounds bisection; <= 0 means unbounded (optimal, slower) diffs.
	Timeout time.Duration
	// EditCost is the notional cost of an empty edit, used by CleanupEfficiency.
	EditCost int
}

// NewDiffEngine returns a DiffEngine with the package defaults.
func NewDiffEngine() *DiffEngine {
	return &DiffEngine{Timeout: 5 * time.Second, EditCost: 4}
}

// Diff computes the edit script transforming text1 into text2.
func (e *DiffEngine) Diff(text1, text2 string, checkLines bool) (EditScript, error) {
	var deadline time.Time
	if e.Timeout > 0 {
		deadline = time.Now().Add(e.Timeout)
	}
	r1, r2 := []rune(text1), []rune(text2)
	script := e.diffRunes(r1, r2, checkLines, deadline)
	return e.CleanupMerge(script), nil
}

func (e *DiffEngine) diffRunes(text1, text2 []rune, checkLines bool, deadline time.Time) EditScript {
	if runesEqual(text1, text2) {
		var diffs EditScript
		if len(text1) > 0 {
			diffs = append(diffs, Edit{OpEqual, string(text1)})
		}
		return diffs
	}

	// Trim off common prefix (speedup).
	commonlength := commonPrefixLength(text1, text2)
	commonprefix := text1[:commonlength]
	text1 = text1[commonlength:]
	text2 = text2[commonlength:]

	// Trim off common suffix (speedup).
	commonlength = commonSuffixLength(text1, text2)
	commonsuffix := text1[len(text1)-commonlength:]
	text1 = text1[:len(text1)-commonlength]
	text2 = text2[:len(text2)-commonlength]

	diffs := e.compute(text1, text2, checkLines, deadline)

	if len(commonprefix) != 0 {
		diffs = append(EditScript{{OpEqual, string(commonprefix)}}, diffs...)
	}
	if len(commonsuffix) != 0 {
		diffs = append(diffs, Edit{OpEqual, string(commonsuffix)})
	}

	return e.CleanupMerge(diffs)
}

// compute finds the differences between two rune slices with no common
// prefix or suffix remaining.
func (e *DiffEngine) compute(text1, text2 []rune, checkLines bool, deadline time.Time) EditScript {
	if len(text1) == 0 {
		return EditScript{{OpInsert, string(text2)}}
	}
	if len(text2) == 0 {
		return EditScript{{OpDelete, string(text1)}}
	}

	var longtext, shorttext []rune
	if len(text1) > len(text2) {
		longtext, shorttext = text1, text2
	} else {
		longtext, shorttext = text2, text1
	}

	if i := runesIndex(longtext, shorttext); i != -1 {
		op := OpInsert
		if len(text1) > len(text2) {
			op = OpDelete
		}
		return EditScript{
			{op, string(longtext[:i])},
			{OpEqual, string(shorttext)},
			{op, string(longtext[i+len(shorttext):])},
		}
	}

	if len(shorttext) == 1 {
		return EditScript{
			{OpDelete, string(text1)},
			{OpInsert, string(text2)},
		}
	}

	if hm := e.halfMatch(text1, text2, deadline.IsZero()); hm != nil {
		text1A, text1B := hm[0], hm[1]
		text2A, text2B := hm[2], hm[3]
		midCommon := hm[4]
		diffsA := e.diffRunes(text1A, text2A, checkLines, deadline)
		diffsB := e.diffRunes(text1B, text2B, checkLines, deadline)
		diffs := diffsA
		diffs = append(diffs, Edit{OpEqual, string(midCommon)})
		diffs = append(diffs, diffsB...)
		return diffs
	}

	if checkLines && len(text1) > 100 && len(text2) > 100 {
		return e.lineMode(text1, text2, deadline)
	}

	return e.bisect(text1, text2, deadline)
}

// lineMode does a quick line-level diff, then re-diffs replacement blocks
// character by character for accuracy. Can produce non-minimal diffs.
func (e *DiffEngine) lineMode(text1, text2 []rune, deadline time.Time) EditScript {
	chars1, chars2, lineArray := linesToRunes(string(text1), string(text2))
	diffs := e.diffRunes(chars1, chars2, false, deadline)
	diffs = charsToLines(diffs, lineArray)
	diffs = e.CleanupSemantic(diffs)

	// Rediff any replacement blocks, this time character-by-character.
	diffs = append(diffs, Edit{OpEqual, ""})
	pointer := 0
	countDelete, countInsert := 0, 0
	var textDelete, textInsert strings.Builder
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert.WriteString(diffs[pointer].Text)
		case OpDelete:
			countDelete++
			textDelete.WriteString(diffs[pointer].Text)
		case OpEqual:
			if countDelete >= 1 && countInsert >= 1 {
				diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert)
				pointer = pointer - countDelete - countInsert
				sub := e.diffRunes([]rune(textDelete.String()), []rune(textInsert.String()), false, deadline)
				for j := len(sub) - 1; j >= 0; j-- {
					diffs = splice(diffs, pointer, 0, sub[j])
				}
				pointer += len(sub)
			}
			countInsert, countDelete = 0, 0
			textDelete.Reset()
			textInsert.Reset()
		}
		pointer++
	}
	return diffs[:len(diffs)-1]
}

// bisect finds the middle snake of a diff via Myers's O(ND) algorithm,
// splits the problem in two, and returns the recursively constructed diff.
func (e *DiffEngine) bisect(runes1, runes2 []rune, deadline time.Time) EditScript {
	runes1Len, runes2Len := len(runes1), len(runes2)
	maxD := (runes1Len + runes2Len + 1) / 2
	vOffset := maxD
	vLength := 2 * maxD

	v1 := make([]int, vLength)
	v2 := make([]int, vLength)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0

	delta := runes1Len - runes2Len
	front := delta%2 != 0
	k1start, k1end := 0, 0
	k2start, k2end := 0, 0

	for d := 0; d < maxD; d++ {
		if !deadline.IsZero() && d%16 == 0 && time.Now().After(deadline) {
			break
		}

		for k1 := -d + k1start; k1 <= d-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -d || (k1 != d && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < runes1Len && y1 < runes2Len && runes1[x1] == runes2[y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			switch {
			case x1 > runes1Len:
				k1end += 2
			case y1 > runes2Len:
				k1start += 2
			case front:
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLength && v2[k2Offset] != -1 {
					x2 := runes1Len - v2[k2Offset]
					if x1 >= x2 {
						return e.bisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}

		for k2 := -d + k2start; k2 <= d-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -d || (k2 != d && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < runes1Len && y2 < runes2Len && runes1[runes1Len-x2-1] == runes2[runes2Len-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			switch {
			case x2 > runes1Len:
				k2end += 2
			case y2 > runes2Len:
				k2start += 2
			case !front:
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLength && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					x2 = runes1Len - x2
					if x1 >= x2 {
						return e.bisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}
	}

	// Deadline hit or no commonality at all.
	return EditScript{
		{OpDelete, string(runes1)},
		{OpInsert, string(runes2)},
	}
}

func (e *DiffEngine) bisectSplit(runes1, runes2 []rune, x, y int, deadline time.Time) EditScript {
	runes1a, runes1b := runes1[:x], runes1[x:]
	runes2a, runes2b := runes2[:y], runes2[y:]
	diffs := e.diffRunes(runes1a, runes2a, false, deadline)
	diffsb := e.diffRunes(runes1b, runes2b, false, deadline)
	return append(diffs, diffsb...)
}

// halfMatch checks whether text1 and text2 share a substring at least half
// the length of the longer text. Returns nil when diffing is unbounded
// (insisting on optimality) or no adequate seed is found.
func (e *DiffEngine) halfMatch(text1, text2 []rune, unlimitedTime bool) [][]rune {
	if unlimitedTime {
		return nil
	}

	var longtext, shorttext []rune
	if len(text1) > len(text2) {
		longtext, shorttext = text1, text2
	} else {
		longtext, shorttext = text2, text1
	}

	if len(longtext) < 4 || len(shorttext)*2 < len(longtext) {
		return nil
	}

	hm1 := halfMatchI(longtext, shorttext, (len(longtext)+3)/4)
	hm2 := halfMatchI(longtext, shorttext, (len(longtext)+1)/2)

	var hm [][]rune
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	default:
		if len(hm1[4]) > len(hm2[4]) {
			hm = hm1
		} else {
			hm = hm2
		}
	}

	if len(text1) > len(text2) {
		return hm
	}
	return [][]rune{hm[2], hm[3], hm[0], hm[1], hm[4]}
}

func halfMatchI(longtext, shorttext []rune, i int) [][]rune {
	var bestCommonA, bestCommonB []rune
	var bestCommonLen int
	var bestLongtextA, bestLongtextB []rune
	var bestShorttextA, bestShorttextB []rune

	seed := longtext[i : i+len(longtext)/4]
	for j := runesIndexOf(shorttext, seed, 0); j != -1; j = runesIndexOf(shorttext, seed, j+1) {
		prefixLength := commonPrefixLength(longtext[i:], shorttext[j:])
		suffixLength := commonSuffixLength(longtext[:i], shorttext[:j])
		if bestCommonLen < suffixLength+prefixLength {
			bestCommonA = shorttext[j-suffixLength : j]
			bestCommonB = shorttext[j : j+prefixLength]
			bestCommonLen = len(bestCommonA) + len(bestCommonB)
			bestLongtextA = longtext[:i-suffixLength]
			bestLongtextB = longtext[i+prefixLength:]
			bestShorttextA = shorttext[:j-suffixLength]
			bestShorttextB = shorttext[j+prefixLength:]
		}
	}

	if bestCommonLen*2 < len(longtext) {
		return nil
	}
	common := append(append([]rune(nil), bestCommonA...), bestCommonB...)
	return [][]rune{bestLongtextA, bestLongtextB, bestShorttextA, bestShorttextB, common}
}

// CleanupSemantic reduces the number of edits by eliminating semantically
// trivial equalities, then delegates to CleanupSemanticLossless, then
// extracts common-overlap equalities between adjacent delete/insert pairs.
func (e *DiffEngine) CleanupSemantic(diffs EditScript) EditScript {
	changes := false
	equalities := make([]int, 0, len(diffs))
	var lastequality string
	pointer := 0
	var lengthInsertions1, lengthDeletions1 int
	var lengthInsertions2, lengthDeletions2 int

	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			equalities = append(equalities, pointer)
			lengthInsertions1 = lengthInsertions2
			lengthDeletions1 = lengthDeletions2
			lengthInsertions2 = 0
			lengthDeletions2 = 0
			lastequality = diffs[pointer].Text
		} else {
			if diffs[pointer].Op == OpInsert {
				lengthInsertions2 += utf8.RuneCountInString(diffs[pointer].Text)
			} else {
				lengthDeletions2 += utf8.RuneCountInString(diffs[pointer].Text)
			}
			difference1 := max(lengthInsertions1, lengthDeletions1)
			difference2 := max(lengthInsertions2, lengthDeletions2)
			if utf8.RuneCountInString(lastequality) > 0 &&
				utf8.RuneCountInString(lastequality) <= difference1 &&
				utf8.RuneCountInString(lastequality) <= difference2 {
				insPoint := equalities[len(equalities)-1]
				diffs = splice(diffs, insPoint, 0, Edit{OpDelete, lastequality})
				diffs[insPoint+1].Op = OpInsert
				equalities = equalities[:len(equalities)-1]
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				pointer = -1
				if len(equalities) > 0 {
					pointer = equalities[len(equalities)-1]
				}
				lengthInsertions1, lengthDeletions1 = 0, 0
				lengthInsertions2, lengthDeletions2 = 0, 0
				lastequality = ""
				changes = true
			}
		}
		pointer++
	}

	if changes {
		diffs = e.CleanupMerge(diffs)
	}
	diffs = e.CleanupSemanticLossless(diffs)

	// Find overlaps between adjacent delete/insert pairs.
	pointer = 1
	for pointer < len(diffs) {
		if diffs[pointer-1].Op == OpDelete && diffs[pointer].Op == OpInsert {
			deletion := diffs[pointer-1].Text
			insertion := diffs[pointer].Text
			overlapLength1 := commonOverlap(deletion, insertion)
			overlapLength2 := commonOverlap(insertion, deletion)
			if overlapLength1 >= overlapLength2 {
				if float64(overlapLength1) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlapLength1) >= float64(utf8.RuneCountInString(insertion))/2 {
					diffs = splice(diffs, pointer, 0, Edit{OpEqual, insertion[:overlapLength1]})
					diffs[pointer-1].Text = deletion[:len(deletion)-overlapLength1]
					diffs[pointer+1].Text = insertion[overlapLength1:]
					pointer++
				}
			} else if float64(overlapLength2) >= float64(utf8.RuneCountInString(deletion))/2 ||
				float64(overlapLength2) >= float64(utf8.RuneCountInString(insertion))/2 {
				overlap := Edit{OpEqual, deletion[:overlapLength2]}
				diffs = splice(diffs, pointer, 0, overlap)
				diffs[pointer-1].Op = OpInsert
				diffs[pointer-1].Text = insertion[:len(insertion)-overlapLength2]
				diffs[pointer+1].Op = OpDelete
				diffs[pointer+1].Text = deletion[overlapLength2:]
				pointer++
			}
			pointer++
		}
		pointer++
	}

	return diffs
}

// boundaryScore scores a candidate boundary between two text runs on a 0..5
// scale as specified: 5 for an edge, then +1 for non-alphanumeric, +1 more
// for whitespace, +1 more for a control character, +1 more for a blank line.
func boundaryScore(left, right string) int {
	if len(left) == 0 || len(right) == 0 {
		return 5
	}
	rune1, _ := utf8.DecodeLastRuneInString(left)
	rune2, _ := utf8.DecodeRuneInString(right)

	score := 0
	nonAlphaNumeric1 := !isAlphaNumericRune(rune1)
	nonAlphaNumeric2 := !isAlphaNumericRune(rune2)
	if nonAlphaNumeric1 || nonAlphaNumeric2 {
		score++
	}
	whitespace1 := nonAlphaNumeric1 && isSpaceRune(rune1)
	whitespace2 := nonAlphaNumeric2 && isSpaceRune(rune2)
	if whitespace1 || whitespace2 {
		score++
	}
	control1 := whitespace1 && isControlRune(rune1)
	control2 := whitespace2 && isControlRune(rune2)
	if control1 || control2 {
		score++
	}
	if strings.HasSuffix(left, "\n\n") || strings.HasSuffix(left, "\n\r\n") ||
		strings.HasPrefix(right, "\n\n") || strings.HasPrefix(right, "\r\n\r\n") || strings.HasPrefix(right, "\r\n\n") {
		score++
	}
	return score
}

func isAlphaNumericRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isControlRune(r rune) bool {
	return unicode.IsControl(r)
}

// CleanupSemanticLossless shifts single edits surrounded by equalities to
// align on word boundaries, e.g. "The c[at c]ame." -> "The [cat ]came.".
func (e *DiffEngine) CleanupSemanticLossless(diffs EditScript) EditScript {
	pointer := 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			equality1 := diffs[pointer-1].Text
			edit := diffs[pointer].Text
			equality2 := diffs[pointer+1].Text

			commonOffset := commonSuffixLen(equality1, edit)
			if commonOffset > 0 {
				commonString := edit[len(edit)-commonOffset:]
				equality1 = equality1[:len(equality1)-commonOffset]
				edit = commonString + edit[:len(edit)-commonOffset]
				equality2 = commonString + equality2
			}

			bestEquality1, bestEdit, bestEquality2 := equality1, edit, equality2
			bestScore := boundaryScore(equality1, edit) + boundaryScore(edit, equality2)
			for len(edit) != 0 && len(equality2) != 0 {
				_, sz := utf8.DecodeRuneInString(edit)
				if len(equality2) < sz || edit[:sz] != equality2[:sz] {
					break
				}
				equality1 += edit[:sz]
				edit = edit[sz:] + equality2[:sz]
				equality2 = equality2[sz:]
				score := boundaryScore(equality1, edit) + boundaryScore(edit, equality2)
				if score >= bestScore {
					bestScore = score
					bestEquality1, bestEdit, bestEquality2 = equality1, edit, equality2
				}
			}

			if diffs[pointer-1].Text != bestEquality1 {
				if len(bestEquality1) != 0 {
					diffs[pointer-1].Text = bestEquality1
				} else {
					diffs = splice(diffs, pointer-1, 1)
					pointer--
				}
				diffs[pointer].Text = bestEdit
				if len(bestEquality2) != 0 {
					diffs[pointer+1].Text = bestEquality2
				} else {
					diffs = append(diffs[:pointer+1], diffs[pointer+2:]...)
					pointer--
				}
			}
		}
		pointer++
	}
	return diffs
}

// CleanupEfficiency eliminates short equalities between edits when
// surrounded by enough edit mass, so the resulting script is cheaper to
// store as a patch. Only called on scripts destined to become patches.
func (e *DiffEngine) CleanupEfficiency(diffs EditScript) EditScript {
	changes := false
	type equality struct {
		data int
		next *equality
	}
	var equalities *equality
	lastequality := ""
	pointer := 0
	preIns, preDel, postIns, postDel := false, false, false, false

	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			if utf8.RuneCountInString(diffs[pointer].Text) < e.EditCost && (postIns || postDel) {
				equalities = &equality{data: pointer, next: equalities}
				preIns, preDel = postIns, postDel
				lastequality = diffs[pointer].Text
			} else {
				equalities = nil
				lastequality = ""
			}
			postIns, postDel = false, false
		} else {
			if diffs[pointer].Op == OpDelete {
				postDel = true
			} else {
				postIns = true
			}

			sumPres := 0
			for _, b := range []bool{preIns, preDel, postIns, postDel} {
				if b {
					sumPres++
				}
			}
			if len(lastequality) > 0 &&
				((preIns && preDel && postIns && postDel) ||
					(utf8.RuneCountInString(lastequality) < e.EditCost/2 && sumPres == 3)) {
				insPoint := equalities.data
				diffs = splice(diffs, insPoint, 0, Edit{OpDelete, lastequality})
				diffs[insPoint+1].Op = OpInsert
				equalities = equalities.next
				lastequality = ""
				if preIns && preDel {
					postIns, postDel = true, true
					equalities = nil
				} else {
					if equalities != nil {
						equalities = equalities.next
					}
					if equalities != nil {
						pointer = equalities.data
					} else {
						pointer = -1
					}
					postIns, postDel = false, false
				}
				changes = true
			}
		}
		pointer++
	}

	if changes {
		diffs = e.CleanupMerge(diffs)
	}
	return diffs
}

// CleanupMerge reorders and merges like edit sections. Two passes: first
// coalesce runs and factor common affixes, then shift single edits across
// neighboring equalities to eliminate them.
func (e *DiffEngine) CleanupMerge(diffs EditScript) EditScript {
	diffs = append(diffs, Edit{OpEqual, ""})
	pointer := 0
	countDelete, countInsert := 0, 0
	var commonlength int
	var textDelete, textInsert []rune

	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert = append(textInsert, []rune(diffs[pointer].Text)...)
			pointer++
		case OpDelete:
			countDelete++
			textDelete = append(textDelete, []rune(diffs[pointer].Text)...)
			pointer++
		case OpEqual:
			if countDelete+countInsert > 1 {
				if countDelete != 0 && countInsert != 0 {
					commonlength = commonPrefixLength(textInsert, textDelete)
					if commonlength != 0 {
						x := pointer - countDelete - countInsert
						if x > 0 && diffs[x-1].Op == OpEqual {
							diffs[x-1].Text += string(textInsert[:commonlength])
						} else {
							diffs = append(EditScript{{OpEqual, string(textInsert[:commonlength])}}, diffs...)
							pointer++
						}
						textInsert = textInsert[commonlength:]
						textDelete = textDelete[commonlength:]
					}
					commonlength = commonSuffixLength(textInsert, textDelete)
					if commonlength != 0 {
						insertIndex := len(textInsert) - commonlength
						deleteIndex := len(textDelete) - commonlength
						diffs[pointer].Text = string(textInsert[insertIndex:]) + diffs[pointer].Text
						textInsert = textInsert[:insertIndex]
						textDelete = textDelete[:deleteIndex]
					}
				}
				switch {
				case countDelete == 0:
					diffs = splice(diffs, pointer-countInsert, countDelete+countInsert,
						Edit{OpInsert, string(textInsert)})
				case countInsert == 0:
					diffs = splice(diffs, pointer-countDelete, countDelete+countInsert,
						Edit{OpDelete, string(textDelete)})
				default:
					diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert,
						Edit{OpDelete, string(textDelete)}, Edit{OpInsert, string(textInsert)})
				}
				pointer = pointer - countDelete - countInsert + 1
				if countDelete != 0 {
					pointer++
				}
				if countInsert != 0 {
					pointer++
				}
			} else if pointer != 0 && diffs[pointer-1].Op == OpEqual {
				diffs[pointer-1].Text += diffs[pointer].Text
				diffs = append(diffs[:pointer], diffs[pointer+1:]...)
			} else {
				pointer++
			}
			countInsert, countDelete = 0, 0
			textDelete, textInsert = nil, nil
		}
	}

	if len(diffs[len(diffs)-1].Text) == 0 {
		diffs = diffs[:len(diffs)-1]
	}

	changes := false
	pointer = 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			if strings.HasSuffix(diffs[pointer].Text, diffs[pointer-1].Text) {
				diffs[pointer].Text = diffs[pointer-1].Text +
					diffs[pointer].Text[:len(diffs[pointer].Text)-len(diffs[pointer-1].Text)]
				diffs[pointer+1].Text = diffs[pointer-1].Text + diffs[pointer+1].Text
				diffs = splice(diffs, pointer-1, 1)
				changes = true
			} else if strings.HasPrefix(diffs[pointer].Text, diffs[pointer+1].Text) {
				diffs[pointer-1].Text += diffs[pointer+1].Text
				diffs[pointer].Text = diffs[pointer].Text[len(diffs[pointer+1].Text):] + diffs[pointer+1].Text
				diffs = splice(diffs, pointer+1, 1)
				changes = true
			}
		}
		pointer++
	}

	if changes {
		diffs = e.CleanupMerge(diffs)
	}

	return diffs
}

// ToDelta crushes the script into a tab-separated token string: "=n" for an
// equal run of n runes, "-n" for a delete run of n runes, "+..." for a
// percent-encoded insert.
func (e *DiffEngine) ToDelta(diffs EditScript) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			b.WriteString("+")
			b.WriteString(percentEncode(d.Text))
			b.WriteString("\t")
		case OpDelete:
			b.WriteString("-")
			b.WriteString(strconv.Itoa(utf8.RuneCountInString(d.Text)))
			b.WriteString("\t")
		case OpEqual:
			b.WriteString("=")
			b.WriteString(strconv.Itoa(utf8.RuneCountInString(d.Text)))
			b.WriteString("\t")
		}
	}
	delta := b.String()
	if len(delta) != 0 {
		delta = delta[:len(delta)-1]
	}
	return delta
}

// FromDelta reconstructs the edit script from text1 and a delta produced by
// ToDelta.
func (e *DiffEngine) FromDelta(text1 string, delta string) (EditScript, error) {
	var diffs EditScript
	i := 0
	runes := []rune(text1)
	for _, token := range strings.Split(delta, "\t") {
		if len(token) == 0 {
			continue
		}
		param := token[1:]
		switch op := token[0]; op {
		case '+':
			text, err := percentDecode(param)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			}
			diffs = append(diffs, Edit{OpInsert, text})
		case '=', '-':
			n, err := strconv.Atoi(param)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: malformed delta length %q", ErrInvalidArgument, param)
			}
			i += n
			if i > len(runes) {
				return nil, fmt.Errorf("%w: delta cursor overruns text1", ErrInvalidArgument)
			}
			text := string(runes[i-n : i])
			if op == '=' {
				diffs = append(diffs, Edit{OpEqual, text})
			} else {
				diffs = append(diffs, Edit{OpDelete, text})
			}
		default:
			return nil, fmt.Errorf("%w: invalid delta operation %q", ErrInvalidArgument, string(op))
		}
	}
	if i != len(runes) {
		return nil, fmt.Errorf("%w: delta consumed %d runes, text1 has %d", ErrInvalidArgument, i, len(runes))
	}
	return diffs, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func runesEqual(r1, r2 []rune) bool {
	if len(r1) != len(r2) {
		return false
	}
	for i, c := range r1 {
		if c != r2[i] {
			return false
		}
	}
	return true
}

func runesIndex(haystack, needle []rune) int {
	last := len(haystack) - len(needle)
	for i := 0; i <= last; i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func runesIndexOf(haystack, needle []rune, from int) int {
	if from > len(haystack)-1 {
		return -1
	}
	if from <= 0 {
		return runesIndex(haystack, needle)
	}
	ind := runesIndex(haystack[from:], needle)
	if ind == -1 {
		return -1
	}
	return ind + from
}

func commonPrefixLength(text1, text2 []rune) int {
	n := 0
	for n < len(text1) && n < len(text2) && text1[n] == text2[n] {
		n++
	}
	return n
}

func commonSuffixLength(text1, text2 []rune) int {
	i1, i2 := len(text1), len(text2)
	n := 0
	for {
		i1--
		i2--
		if i1 < 0 || i2 < 0 || text1[i1] != text2[i2] {
			return n
		}
		n++
	}
}

// commonSuffixLen/commonOverlap operate on strings (byte length is fine here
// since they only compare byte-identical runs, never split a rune).
func commonSuffixLen(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n := commonSuffixLength(r1, r2)
	return len(string(r1[len(r1)-n:]))
}

// commonOverlap determines the length of the longest suffix of text1 that
// is also a prefix of text2.
func commonOverlap(text1, text2 string) int {
	text1Length := len(text1)
	text2Length := len(text2)
	if text1Length == 0 || text2Length == 0 {
		return 0
	}
	if text1Length > text2Length {
		text1 = text1[text1Length-text2Length:]
	} else if text1Length < text2Length {
		text2 = text2[:text1Length]
	}
	textLength := min(text1Length, text2Length)
	if text1 == text2 {
		return textLength
	}

	best := 0
	length := 1
	for {
		pattern := text1[textLength-length:]
		found := strings.Index(text2, pattern)
		if found == -1 {
			break
		}
		length += found
		if found == 0 || text1[textLength-length:] == text2[:length] {
			best = length
			length++
		}
	}
	return best
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// splice removes amount elements from slice at index, replacing them with
// elements, the way the teacher's dmp.go does for its byte-based diff type.
func splice(slice EditScript, index int, amount int, elements ...Edit) EditScript {
	tail := append(EditScript(nil), slice[index+amount:]...)
	slice = append(slice[:index], elements...)
	return append(slice, tail...)
}
