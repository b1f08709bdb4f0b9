package discovery

import (
	"cmp"

	"golang.org/x/text/collate"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// SortKey selects the ordering of the derived project list.
type SortKey string

const (
	SortRecent     SortKey = "recent"
	SortName       SortKey = "name"
	SortMembers    SortKey = "members"
	SortReputation SortKey = "reputation"
)

// DefaultSortKey is used for new views and for unrecognized keys.
const DefaultSortKey = SortRecent

var sortKeys = []SortKey{SortRecent, SortName, SortMembers, SortReputation}

var sortLabels = map[SortKey]string{
	SortRecent:     "Recent Activity",
	SortName:       "Name",
	SortMembers:    "Members",
	SortReputation: "Reputation",
}

// SortKeys returns all sort keys in display order.
func SortKeys() []SortKey {
	out := make([]SortKey, len(sortKeys))
	copy(out, sortKeys)
	return out
}

// ParseSortKey maps a string to a SortKey. Unknown values map to
// DefaultSortKey.
func ParseSortKey(s string) SortKey {
	k := SortKey(s)
	if k.Valid() {
		return k
	}
	return DefaultSortKey
}

// Valid reports whether k is one of the known keys.
func (k SortKey) Valid() bool {
	_, ok := sortLabels[k]
	return ok
}

// Label returns the human-readable label for the key.
func (k SortKey) Label() string {
	return sortLabels[ParseSortKey(string(k))]
}

// Next returns the following key in display order, wrapping around.
func (k SortKey) Next() SortKey {
	return k.step(1)
}

// Prev returns the preceding key in display order, wrapping around.
func (k SortKey) Prev() SortKey {
	return k.step(len(sortKeys) - 1)
}

func (k SortKey) step(n int) SortKey {
	k = ParseSortKey(string(k))
	for i, candidate := range sortKeys {
		if candidate == k {
			return sortKeys[(i+n)%len(sortKeys)]
		}
	}
	return DefaultSortKey
}

// comparator returns the ordering function for key. col is only used for
// SortName and may be nil otherwise.
func comparator(key SortKey, col *collate.Collator) func(a, b project.Project) int {
	switch ParseSortKey(string(key)) {
	case SortName:
		return func(a, b project.Project) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortMembers:
		return func(a, b project.Project) int {
			return cmp.Compare(b.MemberCount, a.MemberCount)
		}
	case SortReputation:
		return func(a, b project.Project) int {
			return cmp.Compare(b.TotalReputation, a.TotalReputation)
		}
	default:
		return func(a, b project.Project) int {
			return cmp.Compare(b.RecentActivity, a.RecentActivity)
		}
	}
}
