package parser

import (
	"regexp"
	"strconv"
)

// Herb is a single extracted ingredient with its gram quantity.
type Herb struct {
	Name        string `json:"name"`
	AmountGrams int    `json:"amountGrams"`
}

// herbPattern matches a Hangul name optionally separated by whitespace from a
// digit run. Trailing unit suffixes and punctuation ("g", commas) fall outside
// the match and do not stop extraction of later herbs on the same line.
var herbPattern = regexp.MustCompile(`([가-힣]+)\s*(\d+)`)

// hangulRun is used to report leftover name-like fragments.
var hangulRun = regexp.MustCompile(`[가-힣]+`)

// ExtractHerbs scans a line left to right for name/quantity pairs.
// Matching is non-overlapping and repeats until the line is exhausted.
// A Hangul token with no trailing digits yields no entry; callers that want
// to warn about those use UnmatchedFragments.
func ExtractHerbs(line string) []Herb {
	matches := herbPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}

	herbs := make([]Herb, 0, len(matches))
	for _, m := range matches {
		amount, err := strconv.Atoi(m[2])
		if err != nil {
			// Digit runs longer than an int can hold are operator typos.
			continue
		}
		herbs = append(herbs, Herb{Name: m[1], AmountGrams: amount})
	}
	return herbs
}

// UnmatchedFragments returns the Hangul tokens on the line that did not
// contribute a name to any extracted herb, in order of appearance. They are
// informational only and never block processing.
func UnmatchedFragments(line string) []string {
	matchSpans := herbPattern.FindAllStringSubmatchIndex(line, -1)

	var fragments []string
	for _, span := range hangulRun.FindAllStringIndex(line, -1) {
		if !insideNameSpan(span, matchSpans) {
			fragments = append(fragments, line[span[0]:span[1]])
		}
	}
	return fragments
}

// insideNameSpan reports whether a Hangul run overlaps the name group
// (submatch 1) of any herb match.
func insideNameSpan(span []int, matches [][]int) bool {
	for _, m := range matches {
		nameStart, nameEnd := m[2], m[3]
		if span[0] < nameEnd && span[1] > nameStart {
			return true
		}
	}
	return false
}
