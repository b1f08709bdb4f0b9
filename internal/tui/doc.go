// Package tui is the interactive project browser.
//
// Model owns a discovery.ViewState and is its only writer. The catalog is
// fetched once, off the event loop, in a tea.Cmd bound to a cancellable
// context. Every keystroke in the search box and every sort change goes
// straight to the view state, which recomputes the filtered list before
// the next render.
package tui
