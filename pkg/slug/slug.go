// Package slug derives URL/DOM-safe identifiers from human names and
// guarantees uniqueness within a sibling set. Identifiers already assigned to
// an entity are never silently reassigned.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks removes combining marks left over after NFD decomposition, so
// accented names slugify to their ASCII base letters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name, drops diacritics, collapses every run of
// non-alphanumeric characters to a single hyphen, and trims leading and
// trailing hyphens. The result may be empty.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Derive returns the first free slug for name against the set of existing
// sibling ids: the normalized base, then base-2, base-3, and so on. An empty
// normalization falls back to a positional section name derived from the
// sibling count. Derive is pure and always succeeds.
func Derive(name string, existing map[string]bool) string {
	base := Normalize(name)
	if base == "" {
		base = fmt.Sprintf("section-%d", len(existing)+1)
	}
	if !existing[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !existing[candidate] {
			return candidate
		}
	}
}

// Allocator tracks identifiers assigned within one sibling set, typically the
// groups of a single document.
type Allocator struct {
	seen map[string]bool
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{seen: make(map[string]bool)}
}

// Seed marks ids as already taken without claiming them for any entity. Used
// when re-deriving identifiers for an edit against pre-existing siblings.
func (a *Allocator) Seed(ids ...string) {
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			a.seen[id] = true
		}
	}
}

// Claim returns the identifier for an entity and records it as taken. If the
// entity already carries a non-empty identifier it is returned unchanged
// (trimmed); otherwise a fresh slug is derived from name, with position used
// for the fallback when name normalizes to nothing.
func (a *Allocator) Claim(current, name string, position int) string {
	if id := strings.TrimSpace(current); id != "" {
		a.seen[id] = true
		return id
	}
	base := Normalize(name)
	if base == "" {
		base = fmt.Sprintf("section-%d", position+1)
	}
	id := base
	for i := 2; a.seen[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	a.seen[id] = true
	return id
}

// NextNumber returns the sequence number for an entity appended to a
// collection of the given length: one past the end.
func NextNumber(collectionLen int) int {
	return collectionLen + 1
}
