package ocr

import (
	"regexp"
	"strings"
)

// mrzLineRegexp matches a whole normalized line made of MRZ characters only.
var mrzLineRegexp = regexp.MustCompile(`^[A-Z0-9<]+$`)

// Line lengths of the ICAO 9303 machine readable zone formats.
var mrzLineLengths = map[int]string{
	30: "TD1",
	36: "TD2",
	44: "TD3",
}

/*
ExtractMRZLines returns the machine readable zone lines found in OCR text,
in order and without duplicates.

Each line is upper-cased and stripped of whitespace first, since Tesseract
often splits the filler characters with spaces. A line qualifies when it
has the length of a TD1, TD2 or TD3 line, contains only A-Z, 0-9 and '<',
and has at least one '<' filler.
*/
func ExtractMRZLines(text string) []string {
	lines := make([]string, 0)
	seen := make(map[string]bool)

	for _, raw := range strings.Split(text, "\n") {
		line := normalizeMRZLine(raw)
		if _, ok := mrzLineLengths[len(line)]; !ok {
			continue
		}
		if !mrzLineRegexp.MatchString(line) || !strings.Contains(line, "<") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}

	return lines
}

// MRZFormat reports the document format implied by the MRZ line length, or "" when unknown.
func MRZFormat(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return mrzLineLengths[len(lines[0])]
}

func normalizeMRZLine(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			continue
		case r == '«':
			// A common misread of "<<".
			b.WriteString("<<")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
