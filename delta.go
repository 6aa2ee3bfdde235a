package revtext

import (
	"net/url"
	"strings"
)

// unescaper restores the handful of characters url.QueryEscape encodes that
// the delta/patch text formats want to keep readable, applied after
// QueryEscape so that e.g. "%2C" becomes "," again in the final token.
var unescaper = strings.NewReplacer(
	"%21", "!",
	"%7E", "~",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%3B", ";",
	"%2F", "/",
	"%3F", "?",
	"%3A", ":",
	"%40", "@",
	"%26", "&",
	"%3D", "=",
	"%2B", "+",
	"%24", "$",
	"%2C", ",",
	"%23", "#",
	"%2A", "*",
)

// percentEncode renders text the way toDelta/patch text require:
// url.QueryEscape encodes space as "+", which is turned back into a literal
// space (safe in a tab-separated token), then the readable punctuation
// subset QueryEscape percent-encodes is restored via unescaper.
func percentEncode(text string) string {
	encoded := url.QueryEscape(text)
	encoded = strings.ReplaceAll(encoded, "+", " ")
	return unescaper.Replace(encoded)
}

// percentDecode reverses percentEncode: any literal "+" in the encoded text
// means a literal "+" character (since percentEncode never uses "+" to stand
// for a space), so it must be protected before QueryUnescape treats it as a
// space.
func percentDecode(text string) (string, error) {
	text = strings.ReplaceAll(text, "+", "%2b")
	return url.QueryUnescape(text)
}

// linesToRunes tokenizes text1 and text2 into per-line codepoints (one
// synthetic rune per distinct line) so the bisect diff can run at line
// granularity. Mirrors the teacher's and kenshaw's line-munging step, which
// dmp.go stubs out (commented-out branch in diffCompute) but the spec's
// line-mode diffing requires.
func linesToRunes(text1, text2 string) ([]rune, []rune, []string) {
	lineArray := []string{""} // lineArray[0] is unused, keeps indices 1-based-friendly.
	lineHash := map[string]int{}

	munge := func(text string) []rune {
		var chars []rune
		lineStart := 0
		for lineStart < len(text) {
			lineEnd := strings.IndexByte(text[lineStart:], '\n')
			var line string
			if lineEnd == -1 {
				line = text[lineStart:]
				lineStart = len(text)
			} else {
				lineEnd += lineStart
				line = text[lineStart : lineEnd+1]
				lineStart = lineEnd + 1
			}
			if idx, ok := lineHash[line]; ok {
				chars = append(chars, rune(idx))
			} else {
				lineArray = append(lineArray, line)
				lineHash[line] = len(lineArray) - 1
				chars = append(chars, rune(len(lineArray)-1))
			}
		}
		return chars
	}

	chars1 := munge(text1)
	chars2 := munge(text2)
	return chars1, chars2, lineArray
}

// charsToLines expands an EditScript produced over the synthetic per-line
// runes from linesToRunes back into real text, using the shared lineArray.
func charsToLines(diffs EditScript, lineArray []string) EditScript {
	result := make(EditScript, len(diffs))
	for i, d := range diffs {
		var b strings.Builder
		for _, r := range d.Text {
			b.WriteString(lineArray[int(r)])
		}
		result[i] = Edit{Op: d.Op, Text: b.String()}
	}
	return result
}
