package discovery

import (
	"errors"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

var (
	// ErrAlreadySettled is returned when Settle is called a second time.
	ErrAlreadySettled = errors.New("view state already settled")

	// ErrDisposed is returned when a settlement arrives after Dispose.
	ErrDisposed = errors.New("view state disposed")
)

// Phase is the lifecycle phase of a ViewState.
type Phase int

const (
	// PhasePending: fetch in flight, loading=true, no projects.
	PhasePending Phase = iota
	// PhaseSettled: fetch finished; raw is fixed for the rest of the view.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// ViewState holds the raw catalog, the query and sort selection, and the
// derived list. filtered is only ever written by recompute.
type ViewState struct {
	engine *Engine

	raw      []project.Project
	query    string
	sortKey  SortKey
	loading  bool
	filtered []project.Project

	phase    Phase
	disposed bool
	fetchErr error
}

// Option configures a new ViewState.
type Option func(*ViewState)

// WithEngine sets the derivation engine (collation locale).
func WithEngine(e *Engine) Option {
	return func(v *ViewState) {
		if e != nil {
			v.engine = e
		}
	}
}

// WithQuery sets the initial query.
func WithQuery(q string) Option {
	return func(v *ViewState) { v.query = q }
}

// WithSortKey sets the initial sort key.
func WithSortKey(k SortKey) Option {
	return func(v *ViewState) { v.sortKey = ParseSortKey(string(k)) }
}

// NewViewState returns a view in PhasePending.
func NewViewState(opts ...Option) *ViewState {
	v := &ViewState{
		engine:  defaultEngine,
		raw:     []project.Project{},
		sortKey: DefaultSortKey,
		loading: true,
		phase:   PhasePending,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.recompute()
	return v
}

// Settle records the outcome of the fetch. On error the raw collection is
// empty and err is kept for diagnostics only.
func (v *ViewState) Settle(projects []project.Project, err error) error {
	if v.disposed {
		return ErrDisposed
	}
	if v.phase == PhaseSettled {
		return ErrAlreadySettled
	}

	if err != nil {
		v.fetchErr = err
		v.raw = []project.Project{}
	} else {
		v.raw = make([]project.Project, len(projects))
		copy(v.raw, projects)
	}
	v.loading = false
	v.phase = PhaseSettled
	v.recompute()
	return nil
}

// SetQuery replaces the query and recomputes the view.
func (v *ViewState) SetQuery(q string) {
	if q == v.query {
		return
	}
	v.query = q
	v.recompute()
}

// SetSortKey replaces the sort key and recomputes the view. Unknown keys
// fall back to DefaultSortKey.
func (v *ViewState) SetSortKey(k SortKey) {
	k = ParseSortKey(string(k))
	if k == v.sortKey {
		return
	}
	v.sortKey = k
	v.recompute()
}

// Dispose marks the view as unmounted. Later settlements are dropped.
func (v *ViewState) Dispose() {
	v.disposed = true
}

func (v *ViewState) recompute() {
	v.filtered = v.engine.FilterAndSort(v.raw, v.query, v.sortKey)
}

// Raw returns a copy of the fetched collection in server order.
func (v *ViewState) Raw() []project.Project {
	return clone(v.raw)
}

// Filtered returns a copy of the derived list.
func (v *ViewState) Filtered() []project.Project {
	return clone(v.filtered)
}

// Len returns the number of projects in the derived list.
func (v *ViewState) Len() int { return len(v.filtered) }

// At returns the i-th project of the derived list.
func (v *ViewState) At(i int) (project.Project, bool) {
	if i < 0 || i >= len(v.filtered) {
		return project.Project{}, false
	}
	return v.filtered[i], true
}

func (v *ViewState) Query() string    { return v.query }
func (v *ViewState) SortKey() SortKey { return v.sortKey }
func (v *ViewState) Loading() bool    { return v.loading }
func (v *ViewState) Phase() Phase     { return v.phase }
func (v *ViewState) Disposed() bool   { return v.disposed }

// FetchErr returns the fetch error, if the fetch failed. It never affects
// what is rendered.
func (v *ViewState) FetchErr() error { return v.fetchErr }

// Present maps the current state to its presentation.
func (v *ViewState) Present() Presentation {
	return Present(v.loading, v.filtered, v.query)
}

func clone(in []project.Project) []project.Project {
	out := make([]project.Project, len(in))
	copy(out, in)
	return out
}
