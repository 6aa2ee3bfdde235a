package revtext

import (
	"fmt"
	"strconv"
	"strings"
)

// Patch is a single GNU-unidiff-shaped hunk: an edit script plus the
// positions in the original and revised text it applies at.
type Patch struct {
	Edits   EditScript
	Start1  int
	Start2  int
	Length1 int
	Length2 int
}

// PatchList is an ordered sequence of patches, applied left to right.
type PatchList []Patch

// PatchEngine builds, pads, splits, and fuzzily applies patches.
type PatchEngine struct {
	Diff  *DiffEngine
	Match *MatchEngine
	// Margin is the number of characters of surrounding context kept
	// around each patch, used both to build unique match anchors and to
	// decide how much of an unrelated equality absorbs into a hunk.
	Margin int
	// DeleteThreshold bounds how much worse (as a Levenshtein-derived
	// fraction) a fuzzy-matched delete region can be from the target
	// before the patch is rejected instead of applied.
	DeleteThreshold float64
}

// NewPatchEngine returns a PatchEngine with the package defaults, wired to
// fresh DiffEngine and MatchEngine instances.
func NewPatchEngine() *PatchEngine {
	return &PatchEngine{
		Diff:            NewDiffEngine(),
		Match:           NewMatchEngine(),
		Margin:          4,
		DeleteThreshold: 0.5,
	}
}

// Make computes the diff between text1 and text2 and builds a patch list
// from it.
func (pe *PatchEngine) Make(text1, text2 string) (PatchList, error) {
	diffs, err := pe.Diff.Diff(text1, text2, true)
	if err != nil {
		return nil, err
	}
	if len(diffs) > 2 {
		diffs = pe.Diff.CleanupSemantic(diffs)
		diffs = pe.Diff.CleanupEfficiency(diffs)
	}
	return pe.MakeFromScript(text1, diffs), nil
}

// MakeFromScript builds a patch list from text1 and a precomputed edit
// script (text1 must be the EditScript's own Text1()).
func (pe *PatchEngine) MakeFromScript(text1 string, diffs EditScript) PatchList {
	var patches PatchList
	if len(diffs) == 0 {
		return patches
	}

	var patch Patch
	charCount1, charCount2 := 0, 0
	prepatchText := []rune(text1)
	postpatchText := append([]rune(nil), prepatchText...)

	for i, aDiff := range diffs {
		if len(patch.Edits) == 0 && aDiff.Op != OpEqual {
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}

		switch aDiff.Op {
		case OpInsert:
			patch.Edits = append(patch.Edits, aDiff)
			patch.Length2 += len([]rune(aDiff.Text))
			postpatchText = append(postpatchText[:charCount2], append([]rune(aDiff.Text), postpatchText[charCount2:]...)...)
		case OpDelete:
			patch.Length1 += len([]rune(aDiff.Text))
			patch.Edits = append(patch.Edits, aDiff)
			postpatchText = append(postpatchText[:charCount2], postpatchText[charCount2+len([]rune(aDiff.Text)):]...)
		case OpEqual:
			runes := []rune(aDiff.Text)
			if len(runes) <= 2*pe.Margin && len(patch.Edits) != 0 && i != len(diffs)-1 {
				patch.Edits = append(patch.Edits, aDiff)
				patch.Length1 += len(runes)
				patch.Length2 += len(runes)
			} else if len(runes) >= 2*pe.Margin && len(patch.Edits) != 0 {
				patch = pe.addContext(patch, prepatchText)
				patches = append(patches, patch)
				patch = Patch{}
				prepatchText = postpatchText
				charCount1 = charCount2
			}
		}

		if aDiff.Op != OpInsert {
			charCount1 += len([]rune(aDiff.Text))
		}
		if aDiff.Op != OpDelete {
			charCount2 += len([]rune(aDiff.Text))
		}
	}

	if len(patch.Edits) != 0 {
		patch = pe.addContext(patch, prepatchText)
		patches = append(patches, patch)
	}

	return patches
}

// addContext grows a patch's surrounding context from text until the
// context is unique within text, or the margin budget (MaxBits - 2*margin)
// is exhausted.
func (pe *PatchEngine) addContext(patch Patch, text []rune) Patch {
	if len(text) == 0 {
		return patch
	}

	pattern := string(text[patch.Start2 : patch.Start2+patch.Length1])
	padding := 0

	maxBits := pe.Match.MaxBits
	for runesIndex(text, []rune(pattern)) != lastRunesIndex(text, []rune(pattern), len(text)-1) &&
		(maxBits == 0 || len([]rune(pattern)) < maxBits-2*pe.Margin) {
		padding += pe.Margin
		start := max(0, patch.Start2-padding)
		end := min(len(text), patch.Start2+patch.Length1+padding)
		pattern = string(text[start:end])
	}

	padding += pe.Margin

	prefixStart := max(0, patch.Start2-padding)
	prefix := string(text[prefixStart:patch.Start2])
	if len(prefix) != 0 {
		patch.Edits = append(EditScript{{OpEqual, prefix}}, patch.Edits...)
	}

	suffixEnd := min(len(text), patch.Start2+patch.Length1+padding)
	suffix := string(text[patch.Start2+patch.Length1 : suffixEnd])
	if len(suffix) != 0 {
		patch.Edits = append(patch.Edits, Edit{OpEqual, suffix})
	}

	patch.Start1 -= len([]rune(prefix))
	patch.Start2 -= len([]rune(prefix))
	patch.Length1 += len([]rune(prefix)) + len([]rune(suffix))
	patch.Length2 += len([]rune(prefix)) + len([]rune(suffix))

	return patch
}

// Apply tries to apply each patch, in order, against text, fuzzily
// matching each hunk's context when an exact match at the expected offset
// fails. It returns the resulting text, a per-patch success vector, and an
// error only for structurally invalid input.
func (pe *PatchEngine) Apply(patches PatchList, text string) (string, []bool, error) {
	if len(patches) == 0 {
		return text, nil, nil
	}

	patches = pe.DeepCopy(patches)
	nullPadding, paddedPatches := pe.AddPadding(patches)
	text = nullPadding + text + nullPadding
	paddedPatches = pe.SplitMax(paddedPatches)

	runes := []rune(text)
	delta := 0
	results := make([]bool, len(paddedPatches))

	for x, aPatch := range paddedPatches {
		expectedLoc := aPatch.Start2 + delta
		text1 := aPatch.Edits.Text1()
		text1Runes := []rune(text1)
		var startLoc int
		endLoc := -1

		if len(text1Runes) > pe.Match.MaxBits && pe.Match.MaxBits != 0 {
			startLoc, _ = pe.Match.Match(string(runes), string(text1Runes[:pe.Match.MaxBits]), expectedLoc)
			if startLoc != -1 {
				endLoc, _ = pe.Match.Match(string(runes), string(text1Runes[len(text1Runes)-pe.Match.MaxBits:]), expectedLoc+len(text1Runes)-pe.Match.MaxBits)
				if endLoc == -1 || startLoc >= endLoc {
					startLoc = -1
				}
			}
		} else {
			startLoc, _ = pe.Match.Match(string(runes), text1, expectedLoc)
		}

		if startLoc == -1 {
			results[x] = false
			delta -= aPatch.Length2 - aPatch.Length1
			continue
		}

		results[x] = true
		delta = startLoc - expectedLoc
		var text2 string
		if endLoc == -1 {
			end := min(startLoc+len(text1Runes), len(runes))
			text2 = string(runes[startLoc:end])
		} else {
			end := min(endLoc+pe.Match.MaxBits, len(runes))
			text2 = string(runes[startLoc:end])
		}

		if text1 == text2 {
			runes = append(runes[:startLoc], append([]rune(aPatch.Edits.Text2()), runes[startLoc+len(text1Runes):]...)...)
		} else {
			diffs, _ := pe.Diff.Diff(text1, text2, false)
			levenshteinRatio := float64(diffs.Levenshtein()) / float64(len(text1Runes))
			if len(text1Runes) > pe.Match.MaxBits && levenshteinRatio > pe.DeleteThreshold {
				results[x] = false
			} else {
				diffs = pe.Diff.CleanupSemanticLossless(diffs)
				index1 := 0
				for _, aDiff := range aPatch.Edits {
					if aDiff.Op != OpEqual {
						index2 := diffs.XIndex(index1)
						if aDiff.Op == OpInsert {
							runes = append(runes[:startLoc+index2], append([]rune(aDiff.Text), runes[startLoc+index2:]...)...)
						} else if aDiff.Op == OpDelete {
							delStart := startLoc + index2
							delEnd := startLoc + diffs.XIndex(index1+len([]rune(aDiff.Text)))
							runes = append(runes[:delStart], runes[delEnd:]...)
						}
					}
					if aDiff.Op != OpDelete {
						index1 += len([]rune(aDiff.Text))
					}
				}
			}
		}
	}

	result := string(runes)
	result = result[len(nullPadding) : len(result)-len(nullPadding)]
	return result, results, nil
}

// AddPadding adds a synthetic prefix/suffix of distinct low code points
// around every patch so that a hunk touching the very start or end of the
// text still has context to match against.
func (pe *PatchEngine) AddPadding(patches PatchList) (string, PatchList) {
	paddingLength := pe.Margin
	nullPadding := ""
	for x := 1; x <= paddingLength; x++ {
		nullPadding += string(rune(x))
	}

	for i := range patches {
		patches[i].Start1 += paddingLength
		patches[i].Start2 += paddingLength
	}

	if len(patches) == 0 {
		return nullPadding, patches
	}

	// Add some padding on start of first diff.
	patch := &patches[0]
	if len(patch.Edits) == 0 || patch.Edits[0].Op != OpEqual {
		patch.Edits = append(EditScript{{OpEqual, nullPadding}}, patch.Edits...)
		patch.Start1 -= paddingLength
		patch.Start2 -= paddingLength
		patch.Length1 += paddingLength
		patch.Length2 += paddingLength
	} else if paddingLength > len([]rune(patch.Edits[0].Text)) {
		extraLength := paddingLength - len([]rune(patch.Edits[0].Text))
		prefix := nullPadding[len([]rune(patch.Edits[0].Text)):]
		patch.Edits[0].Text = prefix + patch.Edits[0].Text
		patch.Start1 -= extraLength
		patch.Start2 -= extraLength
		patch.Length1 += extraLength
		patch.Length2 += extraLength
	}

	// Add some padding on end of last diff.
	patch = &patches[len(patches)-1]
	if len(patch.Edits) == 0 || patch.Edits[len(patch.Edits)-1].Op != OpEqual {
		patch.Edits = append(patch.Edits, Edit{OpEqual, nullPadding})
		patch.Length1 += paddingLength
		patch.Length2 += paddingLength
	} else if paddingLength > len([]rune(patch.Edits[len(patch.Edits)-1].Text)) {
		lastText := patch.Edits[len(patch.Edits)-1].Text
		extraLength := paddingLength - len([]rune(lastText))
		suffix := nullPadding[:extraLength]
		patch.Edits[len(patch.Edits)-1].Text = lastText + suffix
		patch.Length1 += extraLength
		patch.Length2 += extraLength
	}

	return nullPadding, patches
}

// SplitMax splits patches whose pattern length exceeds MatchMaxBits into
// several smaller patches, preserving enough overlap context on each side.
func (pe *PatchEngine) SplitMax(patches PatchList) PatchList {
	patchSize := pe.Match.MaxBits
	if patchSize == 0 {
		return patches
	}

	var result PatchList
	for _, bigpatch := range patches {
		if bigpatch.Length1 <= patchSize {
			result = append(result, bigpatch)
			continue
		}

		start1 := bigpatch.Start1
		start2 := bigpatch.Start2
		precontext := ""
		edits := bigpatch.Edits

		for len(edits) != 0 {
			patch := Patch{Start1: start1 - len([]rune(precontext)), Start2: start2 - len([]rune(precontext))}
			empty := true
			if len(precontext) != 0 {
				patch.Length1 = len([]rune(precontext))
				patch.Length2 = len([]rune(precontext))
				patch.Edits = append(patch.Edits, Edit{OpEqual, precontext})
			}

			for len(edits) != 0 && patch.Length1 < patchSize-pe.Margin {
				diffType := edits[0].Op
				diffText := edits[0].Text

				if diffType == OpInsert {
					patch.Length2 += len([]rune(diffText))
					start2 += len([]rune(diffText))
					patch.Edits = append(patch.Edits, edits[0])
					edits = edits[1:]
					empty = false
				} else if diffType == OpDelete && len(patch.Edits) == 1 && patch.Edits[0].Op == OpEqual && len([]rune(diffText)) > 2*patchSize {
					diffTextLen := len([]rune(diffText))
					patch.Length1 += diffTextLen
					start1 += diffTextLen
					empty = false
					patch.Edits = append(patch.Edits, Edit{diffType, diffText})
					edits = edits[1:]
				} else {
					runes := []rune(diffText)
					take := min(len(runes), patchSize-pe.Margin-patch.Length1)
					diffText = string(runes[:take])
					patch.Length1 += len([]rune(diffText))
					start1 += len([]rune(diffText))
					if diffType == OpEqual {
						patch.Length2 += len([]rune(diffText))
						start2 += len([]rune(diffText))
					} else {
						empty = false
					}
					patch.Edits = append(patch.Edits, Edit{diffType, diffText})

					if diffText == edits[0].Text {
						edits = edits[1:]
					} else {
						edits[0].Text = string([]rune(edits[0].Text)[len([]rune(diffText)):])
					}
				}
			}

			precontext = string([]rune(patch.Edits.Text2()))
			if r := []rune(precontext); len(r) > pe.Margin {
				precontext = string(r[len(r)-pe.Margin:])
			}

			var postcontext string
			text1 := ""
			for _, e := range edits {
				if e.Op != OpInsert {
					text1 += e.Text
				}
			}
			if r := []rune(text1); len(r) > pe.Margin {
				postcontext = string(r[:pe.Margin])
			} else {
				postcontext = text1
			}

			if len(postcontext) != 0 {
				patch.Length1 += len([]rune(postcontext))
				patch.Length2 += len([]rune(postcontext))
				if len(patch.Edits) != 0 && patch.Edits[len(patch.Edits)-1].Op == OpEqual {
					patch.Edits[len(patch.Edits)-1].Text += postcontext
				} else {
					patch.Edits = append(patch.Edits, Edit{OpEqual, postcontext})
				}
			}

			if !empty {
				result = append(result, patch)
			}
		}
	}

	return result
}

// DeepCopy returns a value-independent copy of patches, so callers mutating
// the result (AddPadding does, in place) never alias caller-owned state.
func (pe *PatchEngine) DeepCopy(patches PatchList) PatchList {
	out := make(PatchList, len(patches))
	for i, p := range patches {
		edits := make(EditScript, len(p.Edits))
		copy(edits, p.Edits)
		out[i] = Patch{
			Edits:   edits,
			Start1:  p.Start1,
			Start2:  p.Start2,
			Length1: p.Length1,
			Length2: p.Length2,
		}
	}
	return out
}

// String renders a single patch in GNU-unidiff form, e.g.
// "@@ -21,4 +21,10 @@\n".
func (p Patch) String() string {
	var coords1, coords2 string
	switch p.Length1 {
	case 0:
		coords1 = fmt.Sprintf("%d,0", p.Start1)
	case 1:
		coords1 = strconv.Itoa(p.Start1 + 1)
	default:
		coords1 = fmt.Sprintf("%d,%d", p.Start1+1, p.Length1)
	}
	switch p.Length2 {
	case 0:
		coords2 = fmt.Sprintf("%d,0", p.Start2)
	case 1:
		coords2 = strconv.Itoa(p.Start2 + 1)
	default:
		coords2 = fmt.Sprintf("%d,%d", p.Start2+1, p.Length2)
	}

	var b strings.Builder
	b.WriteString("@@ -")
	b.WriteString(coords1)
	b.WriteString(" +")
	b.WriteString(coords2)
	b.WriteString(" @@\n")

	for _, e := range p.Edits {
		switch e.Op {
		case OpInsert:
			b.WriteString("+")
		case OpDelete:
			b.WriteString("-")
		case OpEqual:
			b.WriteString(" ")
		}
		b.WriteString(percentEncode(e.Text))
		b.WriteString("\n")
	}

	return b.String()
}

