package revtext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var patchHeaderRE = regexp.MustCompile(`^@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@$`)

// PatchToText serializes a patch list into the GNU-unidiff-shaped text form
// produced by Patch.String, concatenated in order.
func PatchToText(patches PatchList) string {
	var b strings.Builder
	for _, p := range patches {
		b.WriteString(p.String())
	}
	return b.String()
}

// PatchFromText parses the text form produced by PatchToText back into a
// patch list.
func PatchFromText(text string) (PatchList, error) {
	var patches PatchList
	if len(text) == 0 {
		return patches, nil
	}

	lines := strings.Split(text, "\n")
	i := 0
	for i < len(lines) {
		if lines[i] == "" {
			i++
			continue
		}

		m := patchHeaderRE.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, fmt.Errorf("%w: invalid patch header %q", ErrInvalidArgument, lines[i])
		}

		patch := Patch{}
		patch.Start1, _ = strconv.Atoi(m[1])
		switch m[2] {
		case "":
			patch.Start1--
			patch.Length1 = 1
		case "0":
			patch.Length1 = 0
		default:
			patch.Start1--
			patch.Length1, _ = strconv.Atoi(m[2])
		}

		patch.Start2, _ = strconv.Atoi(m[3])
		switch m[4] {
		case "":
			patch.Start2--
			patch.Length2 = 1
		case "0":
			patch.Length2 = 0
		default:
			patch.Start2--
			patch.Length2, _ = strconv.Atoi(m[4])
		}

		i++
		for i < len(lines) {
			line := lines[i]
			if len(line) == 0 {
				i++
				continue
			}
			sign := line[0]
			if sign == '@' {
				break
			}
			param, err := percentDecode(line[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			}
			switch sign {
			case '-':
				patch.Edits = append(patch.Edits, Edit{OpDelete, param})
			case '+':
				patch.Edits = append(patch.Edits, Edit{OpInsert, param})
			case ' ':
				patch.Edits = append(patch.Edits, Edit{OpEqual, param})
			default:
				return nil, fmt.Errorf("%w: invalid patch line prefix %q", ErrInvalidArgument, string(sign))
			}
			i++
		}

		patches = append(patches, patch)
	}

	return patches, nil
}
