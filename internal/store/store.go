// Package store owns the in-memory requirement graph. Every mutation is
// validated, applied and written through to the persistence gateway while
// holding a single lock, so a failed validation never leaves a partial
// change and two mutations never interleave.
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Gateway persists the whole graph.
type Gateway interface {
	Save(g *types.Graph) error
	Load() (*types.Graph, error)
	Path() string
}

// Store implements types.Engine.
type Store struct {
	mu     sync.Mutex
	graph  *types.Graph
	gw     Gateway
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

var _ types.Engine = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for LastModified stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDPrefix sets the prefix used by ProposeNextID.
func WithIDPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New returns a store over g. A nil g starts empty. A nil gw keeps the
// graph in memory only.
func New(g *types.Graph, gw Gateway, opts ...Option) *Store {
	if g == nil {
		g = types.NewGraph()
	}
	s := &Store{
		graph:  g,
		gw:     gw,
		prefix: types.DefaultIDPrefix,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the graph through gw. A data file that does not exist yet
// yields an empty store; it is created by the first mutation.
func Open(gw Gateway, opts ...Option) (*Store, error) {
	g, err := gw.Load()
	if errors.Is(err, os.ErrNotExist) {
		g, err = types.NewGraph(), nil
	}
	if err != nil {
		return nil, err
	}
	return New(g, gw, opts...), nil
}

// Snapshot returns a deep copy of the graph for reporting.
func (s *Store) Snapshot() *types.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Save writes the current graph. Use it to retry after a mutation
// returned a *types.SaveError.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

// Reload replaces the graph with the gateway's copy. On failure the
// in-memory graph is kept.
func (s *Store) Reload() error {
	if s.gw == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.gw.Load()
	if err != nil {
		return err
	}
	s.graph = g
	return nil
}

// persist must be called with mu held. The mutation stays in memory when
// the write fails.
func (s *Store) persist() error {
	if s.gw == nil {
		return nil
	}
	err := s.gw.Save(s.graph)
	if err == nil {
		return nil
	}
	if !errors.Is(err, types.ErrSave) {
		err = &types.SaveError{Path: s.gw.Path(), Err: err}
	}
	s.logger.Error("save failed, change kept in memory",
		zap.String("path", s.gw.Path()), zap.Error(err))
	return err
}

func (s *Store) stamp() time.Time {
	return s.now().Truncate(time.Second)
}

func (s *Store) project(name string) (*types.Project, error) {
	p := s.graph.Project(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", types.ErrProjectNotFound, name)
	}
	return p, nil
}

func (s *Store) subsystem(project, name string) (*types.Project, *types.Subsystem, error) {
	p, err := s.project(project)
	if err != nil {
		return nil, nil, err
	}
	sub := p.Subsystem(name)
	if sub == nil {
		return nil, nil, fmt.Errorf("%w: %q in project %q", types.ErrSubsystemNotFound, name, project)
	}
	return p, sub, nil
}

func newChangeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) impact(op, project, target string, affected []string) types.Impact {
	im := types.Impact{
		ChangeID: newChangeID(),
		Op:       op,
		Project:  project,
		Target:   target,
		Affected: affected,
	}
	if len(affected) > 0 {
		s.logger.Info("parent links repaired",
			zap.String("change_id", im.ChangeID),
			zap.String("op", op),
			zap.String("project", project),
			zap.String("target", target),
			zap.Strings("affected", affected))
	}
	return im
}

func checkName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return &types.ValidationError{Field: field, Value: name, Reason: types.ErrInvalidName}
	}
	return nil
}
