// Package ambiguity blocks prescriptions whose herb names cannot be mapped to
// a single stocked item. Certain names are true homonyms (작약 may mean 백작약
// or 적작약); auto-deducting the wrong physical item corrupts inventory
// silently, so a match is a hard stop rather than a warning.
package ambiguity

import (
	"fmt"
	"strings"

	"github.com/haniwon/clinic-platform/internal/parser"
)

// Finding is the outcome of a gate check. It is recomputed on every parse and
// never persisted.
type Finding struct {
	// Blocked is true when at least one extracted herb name is ambiguous.
	// Callers must not persist, deduct inventory, schedule, or notify.
	Blocked bool `json:"blocked"`
	// Matches lists the distinct ambiguous names in first-occurrence order.
	Matches []string `json:"matches,omitempty"`
}

// Gate checks extracted herb names against the configured ambiguous set.
type Gate struct {
	names map[string]struct{}
}

// NewGate builds a gate from the configured ambiguous herb names.
// Comparison is exact: a disambiguated variant like 백작약 never matches 작약.
func NewGate(names []string) *Gate {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return &Gate{names: set}
}

// Check intersects the herb names with the ambiguous set.
func (g *Gate) Check(herbs []parser.Herb) Finding {
	if g == nil || len(g.names) == 0 || len(herbs) == 0 {
		return Finding{}
	}

	var matches []string
	seen := make(map[string]struct{})
	for _, herb := range herbs {
		if _, ambiguous := g.names[herb.Name]; !ambiguous {
			continue
		}
		if _, dup := seen[herb.Name]; dup {
			continue
		}
		seen[herb.Name] = struct{}{}
		matches = append(matches, herb.Name)
	}

	return Finding{Blocked: len(matches) > 0, Matches: matches}
}

// BlockedError is returned by entry points that refuse to proceed on an
// ambiguity match. It carries the untouched source text so the operator can
// correct and resubmit.
type BlockedError struct {
	Matches []string
	RawText string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("ambiguity: herb names need disambiguation: %s", strings.Join(e.Matches, ", "))
}
