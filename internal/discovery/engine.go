package discovery

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// Engine derives the displayed project list. It holds only the collation
// locale and is safe for concurrent use.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an engine that orders names using locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

var defaultEngine = NewEngine(language.English)

// FilterAndSort derives the view with the default (English) collation.
func FilterAndSort(raw []project.Project, query string, key SortKey) []project.Project {
	return defaultEngine.FilterAndSort(raw, query, key)
}

// FilterAndSort keeps the projects matching query and orders them by key.
// The result is a new slice; raw is never modified. Projects that compare
// equal keep their relative order from raw.
func (e *Engine) FilterAndSort(raw []project.Project, query string, key SortKey) []project.Project {
	out := make([]project.Project, 0, len(raw))
	needle := strings.ToLower(query)
	for _, p := range raw {
		if matches(p, needle) {
			out = append(out, p)
		}
	}

	var col *collate.Collator
	if ParseSortKey(string(key)) == SortName {
		// Collators keep scratch buffers; one per call keeps this pure.
		col = collate.New(e.locale)
	}
	slices.SortStableFunc(out, comparator(key, col))
	return out
}

// Matches reports whether p is kept for query (case-insensitive).
func Matches(p project.Project, query string) bool {
	return matches(p, strings.ToLower(query))
}

// matches expects an already lower-cased needle.
func matches(p project.Project, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	return p.HasDescription() && strings.Contains(strings.ToLower(p.Description), needle)
}
