package tui

import (
	"fmt"
	"net/url"
	"sync"
)

// CreateRoute is where the Create Project affordance leads.
const CreateRoute = "/projects/new"

// Navigator leaves the discovery view for another page.
//
// Implementations must not write to the terminal; the TUI owns it until
// the program exits.
type Navigator interface {
	// Open navigates to a project detail route such as /projects/{slug}.
	Open(route string) error
	// Create navigates to the project creation flow.
	Create() error
}

// URLNavigator resolves routes against a web base URL and hands the
// result to a launcher, typically a browser opener.
type URLNavigator struct {
	base   *url.URL
	launch func(string) error

	mu   sync.Mutex
	last string
}

// NewURLNavigator parses base. A nil launch only records the URL.
func NewURLNavigator(base string, launch func(string) error) (*URLNavigator, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing web url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("web url %q must be absolute", base)
	}
	return &URLNavigator{base: u, launch: launch}, nil
}

// Resolve returns the absolute URL for route.
func (n *URLNavigator) Resolve(route string) string {
	return n.base.JoinPath(route).String()
}

// Open implements Navigator.
func (n *URLNavigator) Open(route string) error {
	return n.visit(n.Resolve(route))
}

// Create implements Navigator.
func (n *URLNavigator) Create() error {
	return n.visit(n.Resolve(CreateRoute))
}

// Last returns the most recently visited URL, or "".
func (n *URLNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func (n *URLNavigator) visit(target string) error {
	n.mu.Lock()
	n.last = target
	n.mu.Unlock()

	if n.launch == nil {
		return nil
	}
	if err := n.launch(target); err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	return nil
}
