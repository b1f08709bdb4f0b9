// Package discovery implements the project discovery view model.
//
// # Overview
//
// Three pieces, leaves first:
//   - FilterAndSort: pure derivation (raw, query, sort key) → ordered view
//   - ViewState: the single source of truth for one mounted view
//   - Present: maps (loading, filtered, query) to exactly one Mode
//
// # State Machine
//
// ViewState starts in PhasePending with loading=true and no projects. The
// one fetch settles it exactly once (Settle), success or failure, moving it
// to PhaseSettled. Raw data never changes again. Query and sort key stay
// mutable for the life of the view and every mutation recomputes the
// filtered list immediately:
//
//	v := discovery.NewViewState()
//	_ = v.Settle(projects, err) // PhasePending → PhaseSettled
//	v.SetQuery("al")            // recompute
//	v.SetSortKey(discovery.SortMembers)
//	p := v.Present()            // ModeLoading | ModeEmpty | ModePopulated
//
// A failed fetch settles with an empty collection and renders exactly like
// an empty catalog. The error is kept only for diagnostics (FetchErr).
//
// # Disposal
//
// Dispose marks the view unmounted. A settlement arriving afterwards is
// rejected with ErrDisposed and leaves the state untouched.
//
// # Concurrency
//
// ViewState is not safe for concurrent use. It is owned by a single event
// loop (the Bubble Tea program); only the fetch runs elsewhere and reports
// back through that loop.
//
// # Scaling
//
// Every keystroke re-filters and re-sorts the whole collection. There is
// no debounce or incremental index; fine for catalogs of a few thousand
// projects.
package discovery
