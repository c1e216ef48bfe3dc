// Package parser turns free-text prescription pastes into structured records.
//
// Two layouts are accepted: the platform's own labeled confirmation format and
// the legacy 4-line chat shorthand. Both converge on ParsedPrescription.
// Parsing never fails; missing lines or labels simply leave fields empty, and
// deciding whether the result is usable is the caller's job.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationDays is the dispensed duration assumed when no explicit
// duration is supplied and the memo does not carry one.
const DefaultDurationDays = 15

// ParsedPrescription is the normalized output of a single parse call.
// It is transient; nothing here is persisted directly.
type ParsedPrescription struct {
	// RawText is the original input, retained for audit and for re-display
	// when a downstream gate refuses the text.
	RawText string `json:"rawText"`
	// PatientName may still carry an honorific suffix; strip with
	// CleanPatientName before roster matching.
	PatientName string `json:"patientName"`
	// Herbs preserves order of appearance. Duplicate names are kept as
	// separate entries.
	Herbs []Herb `json:"herbs"`
	// MetaData holds the two positional auxiliary fields:
	// [0] water volume, [1] memo.
	MetaData [2]string `json:"metaData"`
	// Format records which layout the classifier selected.
	Format Format `json:"format"`
	// Unrecognized lists herb-like tokens on the herb line that had no
	// quantity. Informational only.
	Unrecognized []string `json:"unrecognized,omitempty"`
}

// honorificSuffix matches the polite suffixes staff append to patient names.
var honorificSuffix = regexp.MustCompile(`(님|환자|귀하)\s*$`)

// durationPattern pulls a day count out of memo text like "14팩-7일분".
var durationPattern = regexp.MustCompile(`(\d+)일분`)

// Parse classifies the text and applies the matching format parser.
// It never returns an error: malformed input yields empty fields.
func Parse(text string) ParsedPrescription {
	trimmed := strings.TrimSpace(text)
	if Classify(trimmed) == FormatSystem {
		return parseSystemFormat(trimmed)
	}
	return parseLegacyFormat(trimmed)
}

// parseSystemFormat reads labeled lines in any order. A field whose label
// never appears stays empty.
func parseSystemFormat(text string) ParsedPrescription {
	parsed := ParsedPrescription{RawText: text, Format: FormatSystem}

	var herbLine string
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(clean, labelPatientName):
			parsed.PatientName = strings.TrimSpace(strings.TrimPrefix(clean, labelPatientName))
		case strings.HasPrefix(clean, labelHerbs):
			herbLine = strings.TrimSpace(strings.TrimPrefix(clean, labelHerbs))
		case strings.HasPrefix(clean, labelWaterVolume):
			parsed.MetaData[0] = strings.TrimSpace(strings.TrimPrefix(clean, labelWaterVolume))
		case strings.HasPrefix(clean, labelMemo):
			parsed.MetaData[1] = strings.TrimSpace(strings.TrimPrefix(clean, labelMemo))
		}
	}

	parsed.Herbs = ExtractHerbs(herbLine)
	parsed.Unrecognized = UnmatchedFragments(herbLine)
	return parsed
}

// parseLegacyFormat reads the strict positional layout:
// line 1 name, line 2 herbs, line 3 water volume, line 4 memo.
// Missing lines default to empty strings.
func parseLegacyFormat(text string) ParsedPrescription {
	lines := strings.Split(text, "\n")
	lineAt := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	herbLine := lineAt(1)
	return ParsedPrescription{
		RawText:      text,
		Format:       FormatLegacy,
		PatientName:  strings.TrimSpace(honorificSuffix.ReplaceAllString(lineAt(0), "")),
		Herbs:        ExtractHerbs(herbLine),
		Unrecognized: UnmatchedFragments(herbLine),
		MetaData:     [2]string{lineAt(2), lineAt(3)},
	}
}

// CleanPatientName strips trailing honorifics (님/환자/귀하) and whitespace.
func CleanPatientName(name string) string {
	return strings.TrimSpace(honorificSuffix.ReplaceAllString(name, ""))
}

// DurationFromMemo extracts a day count from memo text such as "14팩-7일분".
// Returns DefaultDurationDays when no duration is present.
func DurationFromMemo(memo string) int {
	m := durationPattern.FindStringSubmatch(memo)
	if m == nil {
		return DefaultDurationDays
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || days <= 0 {
		return DefaultDurationDays
	}
	return days
}
