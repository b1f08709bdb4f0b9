package project

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrEmptyProjectID   = errors.New("project ID cannot be empty")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrEmptySlug        = errors.New("project slug cannot be empty")
	ErrInvalidSlug      = errors.New("invalid project slug")
	ErrNegativeCount    = errors.New("project counters cannot be negative")
	ErrDuplicateID      = errors.New("duplicate project ID")
	ErrDuplicateSlug    = errors.New("duplicate project slug")
)

// newSlugPattern is the stricter form required of slugs minted by NewProject:
// lowercase alphanumerics and inner hyphens. Catalog payloads may carry any
// slug that survives path escaping unchanged.
var newSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// fallbackSlugLen is how many ID characters a fallback slug keeps.
const fallbackSlugLen = 8

// RoutePrefix is the path under which project detail views live.
const RoutePrefix = "/projects/"

// Project is a catalogued entity addressable by its slug.
type Project struct {
	// ID is the opaque unique identifier.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Name is the display name. Never empty.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Slug is the URL-safe routing key.
	Slug string `json:"slug" yaml:"slug" toml:"slug"`

	LogoURL       string `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty" toml:"logoUrl,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty" yaml:"tokenSymbol,omitempty" toml:"tokenSymbol,omitempty"`
	RepositoryURL string `json:"repositoryUrl,omitempty" yaml:"repositoryUrl,omitempty" toml:"repositoryUrl,omitempty"`
	Website       string `json:"website,omitempty" yaml:"website,omitempty" toml:"website,omitempty"`

	MemberCount     int `json:"memberCount" yaml:"memberCount" toml:"memberCount"`
	TotalReputation int `json:"totalReputation" yaml:"totalReputation" toml:"totalReputation"`
	RecentActivity  int `json:"recentActivity" yaml:"recentActivity" toml:"recentActivity"`

	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
}

// NewProject creates a new project with a generated UUID.
// If slug is empty it is derived from the name.
func NewProject(name, slug string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyProjectName
	}
	id := uuid.New().String()
	if slug == "" {
		slug = Slugify(name)
		if slug == "" {
			slug = fallbackSlug(id)
		}
	} else if !newSlugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	p := &Project{
		ID:   id,
		Name: name,
		Slug: slug,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// fallbackSlug names a project whose display name has no ASCII letters or
// digits to slugify.
func fallbackSlug(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > fallbackSlugLen {
		id = id[:fallbackSlugLen]
	}
	return "p-" + strings.ToLower(id)
}

// ValidSlug reports whether s can be used verbatim as a route segment:
// non-empty, unchanged by path escaping and not a dot segment.
func ValidSlug(s string) bool {
	return s != "" && s != "." && s != ".." && url.PathEscape(s) == s
}

// Validate checks if the project has valid fields.
func (p *Project) Validate() error {
	if p.ID == "" {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if p.Slug == "" {
		return ErrEmptySlug
	}
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, p.Slug)
	}
	if p.MemberCount < 0 || p.TotalReputation < 0 || p.RecentActivity < 0 {
		return ErrNegativeCount
	}
	return nil
}

// HasDescription reports whether a description is present.
func (p Project) HasDescription() bool { return p.Description != "" }

// HasLogo reports whether a logo URL is present.
func (p Project) HasLogo() bool { return p.LogoURL != "" }

// HasToken reports whether a token symbol is present.
func (p Project) HasToken() bool { return p.TokenSymbol != "" }

// Route returns the detail route for the project.
func (p Project) Route() string {
	return RoutePrefix + p.Slug
}

// Initial returns the upper-cased first character of the name, used as
// the avatar fallback.
func (p Project) Initial() string {
	r, _ := utf8.DecodeRuneInString(p.Name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// ValidateCollection checks every project and enforces unique IDs and slugs.
func ValidateCollection(projects []Project) error {
	ids := make(map[string]struct{}, len(projects))
	slugs := make(map[string]struct{}, len(projects))
	for i := range projects {
		p := &projects[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
		if _, ok := ids[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		ids[p.ID] = struct{}{}
		if _, ok := slugs[p.Slug]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, p.Slug)
		}
		slugs[p.Slug] = struct{}{}
	}
	return nil
}

// Slugify derives a slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
