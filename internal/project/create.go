package project

import (
	"strings"
)

// CreateRequest is the payload of the project-creation endpoint.
type CreateRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug,omitempty"`
	Description   string   `json:"description,omitempty"`
	LogoURL       string   `json:"logoUrl,omitempty"`
	TokenSymbol   string   `json:"tokenSymbol,omitempty"`
	RepositoryURL string   `json:"repositoryUrl,omitempty"`
	Website       string   `json:"website,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Build validates the request and returns the new project with a fresh ID.
// Counters start at zero.
func (r CreateRequest) Build() (*Project, error) {
	p, err := NewProject(strings.TrimSpace(r.Name), r.Slug)
	if err != nil {
		return nil, err
	}
	p.Description = strings.TrimSpace(r.Description)
	p.LogoURL = r.LogoURL
	p.TokenSymbol = strings.ToUpper(strings.TrimSpace(r.TokenSymbol))
	p.RepositoryURL = r.RepositoryURL
	p.Website = r.Website
	p.Tags = r.Tags
	return p, nil
}
