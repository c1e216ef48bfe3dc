package parser

import "strings"

// Format identifies which prescription text layout an input uses.
type Format string

const (
	// FormatSystem is labeled text produced by the platform itself and
	// re-pasted by an operator (성함:/약재:/물량:/비고: lines, any order).
	FormatSystem Format = "system"
	// FormatLegacy is the raw 4-line positional shorthand staff type into chat
	// (name / herbs / water volume / memo).
	FormatLegacy Format = "legacy"
)

const (
	labelPatientName = "성함:"
	labelHerbs       = "약재:"
	labelWaterVolume = "물량:"
	labelMemo        = "비고:"
)

// Classify decides which format parser to apply. Text counts as system format
// when it carries both the name and herb labels anywhere in the body; labels
// may appear on any line and in any order since operators copy-paste freely.
func Classify(text string) Format {
	trimmed := strings.TrimSpace(text)
	if strings.Contains(trimmed, labelPatientName) && strings.Contains(trimmed, labelHerbs) {
		return FormatSystem
	}
	return FormatLegacy
}
