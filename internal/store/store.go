package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// ErrSlugTaken is returned when a created project's explicit slug is in use.
var ErrSlugTaken = errors.New("slug already taken")

// maxSlugSuffix bounds the search for a free derived slug.
const maxSlugSuffix = 1000

// Store is the in-memory project catalog.
type Store struct {
	path   string
	logger *logging.Logger

	mu      sync.RWMutex
	seed    []project.Project
	created []project.Project
	version uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store with no backing file.
func New(opts ...Option) *Store {
	s := &Store{
		logger: logging.NewNop(),
		seed:   []project.Project{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the seed file at path. An empty path yields an empty store.
func Open(path string, opts ...Option) (*Store, error) {
	s := New(opts...)
	if path == "" {
		return s, nil
	}
	s.path = path
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithProjects returns a store seeded with a copy of projects.
func NewWithProjects(projects []project.Project, opts ...Option) (*Store, error) {
	if err := project.ValidateCollection(projects); err != nil {
		return nil, err
	}
	s := New(opts...)
	s.seed = slices.Clone(projects)
	return s, nil
}

// Path returns the seed file path, if any.
func (s *Store) Path() string {
	return s.path
}

// All returns a copy of the catalog: seed projects in file order, then
// created projects in creation order.
func (s *Store) All() []project.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]project.Project, 0, len(s.seed)+len(s.created))
	out = append(out, s.seed...)
	out = append(out, s.created...)
	for i := range out {
		out[i].Tags = slices.Clone(out[i].Tags)
	}
	return out
}

// Len returns the number of projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seed) + len(s.created)
}

// Version increments on every successful reload.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Create validates req and appends the new project.
//
// A slug given explicitly must be free. A slug derived from the name gets
// a numeric suffix until it is free.
func (s *Store) Create(req project.CreateRequest) (project.Project, error) {
	p, err := req.Build()
	if err != nil {
		return project.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := s.slugsLocked()
	if _, ok := taken[p.Slug]; ok {
		if req.Slug != "" {
			return project.Project{}, fmt.Errorf("%w: %s", ErrSlugTaken, p.Slug)
		}
		base := p.Slug
		for n := 2; ; n++ {
			if n > maxSlugSuffix {
				return project.Project{}, fmt.Errorf("%w: %s", ErrSlugTaken, base)
			}
			candidate := base + "-" + strconv.Itoa(n)
			if _, ok := taken[candidate]; !ok {
				p.Slug = candidate
				break
			}
		}
	}

	s.created = append(s.created, *p)
	return *p, nil
}

// Reload re-reads the seed file. On failure the current catalog is kept.
func (s *Store) Reload(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	seed, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append(slices.Clone(seed), s.created...)
	if err := project.ValidateCollection(merged); err != nil {
		return fmt.Errorf("seed %s conflicts with created projects: %w", s.path, err)
	}
	s.seed = seed
	s.version++

	s.logger.Info(ctx, "catalog loaded",
		zap.String("path", s.path),
		zap.Int("projects", len(seed)+len(s.created)),
		zap.Uint64("version", s.version))
	return nil
}

func (s *Store) slugsLocked() map[string]struct{} {
	slugs := make(map[string]struct{}, len(s.seed)+len(s.created))
	for _, p := range s.seed {
		slugs[p.Slug] = struct{}{}
	}
	for _, p := range s.created {
		slugs[p.Slug] = struct{}{}
	}
	return slugs
}
