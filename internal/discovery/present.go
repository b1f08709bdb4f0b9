package discovery

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// Mode is the presentation mode. Exactly one is active at a time.
type Mode int

const (
	ModeLoading Mode = iota
	ModeEmpty
	ModePopulated
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeEmpty:
		return "empty"
	case ModePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

const (
	// PlaceholderCount is the number of skeleton cards shown while loading.
	PlaceholderCount = 6

	// SummaryWidth is the display width descriptions are truncated to.
	SummaryWidth = 120

	EmptyTitle          = "No projects found"
	EmptySearchMessage  = "Try adjusting your search terms"
	EmptyCatalogMessage = "Be the first to create a project!"
	NoDescription       = "No description available"
)

// Counter labels, in card order.
const (
	LabelMembers    = "members"
	LabelReputation = "reputation"
	LabelRecent     = "recent"
)

// Counter is one numeric stat on a card.
type Counter struct {
	Label string
	Value int
}

// Card is the display model for one project.
type Card struct {
	ID string

	// Initial is the avatar fallback; LogoURL is empty when there is no logo.
	Initial string
	LogoURL string

	Name string

	// Badge is the token symbol, empty when absent.
	Badge string

	// Summary is the truncated description or the NoDescription placeholder.
	Summary        string
	HasDescription bool

	Counters [3]Counter

	// Route is the navigation target for the card.
	Route string
}

// EmptyState describes the empty mode.
type EmptyState struct {
	Title     string
	Message   string
	Searching bool
	CanCreate bool
}

// Presentation is the output of Present.
type Presentation struct {
	Mode Mode

	// Placeholders is PlaceholderCount in ModeLoading, zero otherwise.
	Placeholders int

	// Empty is set only in ModeEmpty.
	Empty *EmptyState

	// Cards is set only in ModePopulated, one per project in order.
	Cards []Card
}

// Present selects the presentation mode for the given inputs.
func Present(loading bool, filtered []project.Project, query string) Presentation {
	switch {
	case loading:
		return Presentation{Mode: ModeLoading, Placeholders: PlaceholderCount}
	case len(filtered) == 0:
		searching := query != ""
		msg := EmptyCatalogMessage
		if searching {
			msg = EmptySearchMessage
		}
		return Presentation{
			Mode: ModeEmpty,
			Empty: &EmptyState{
				Title:     EmptyTitle,
				Message:   msg,
				Searching: searching,
				CanCreate: true,
			},
		}
	default:
		cards := make([]Card, len(filtered))
		for i, p := range filtered {
			cards[i] = NewCard(p)
		}
		return Presentation{Mode: ModePopulated, Cards: cards}
	}
}

// NewCard builds the display model for p.
func NewCard(p project.Project) Card {
	c := Card{
		ID:             p.ID,
		Initial:        p.Initial(),
		LogoURL:        p.LogoURL,
		Name:           p.Name,
		Badge:          p.TokenSymbol,
		Summary:        NoDescription,
		Counters: [3]Counter{
			{Label: LabelMembers, Value: p.MemberCount},
			{Label: LabelReputation, Value: p.TotalReputation},
			{Label: LabelRecent, Value: p.RecentActivity},
		},
		Route: p.Route(),
	}
	if s := Summarize(p.Description, SummaryWidth); s != "" {
		c.Summary = s
		c.HasDescription = true
	}
	return c
}

// Summarize collapses whitespace and truncates s to width cells.
func Summarize(s string, width int) string {
	return ansi.Truncate(strings.Join(strings.Fields(s), " "), width, "…")
}
