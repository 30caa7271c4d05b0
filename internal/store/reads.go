package store

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/internal/idalloc"
	"github.com/mesh-intelligence/satreq/internal/query"
	"github.com/mesh-intelligence/satreq/internal/trace"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Read accessors return copies; callers may keep or modify them freely.

// ListProjects returns the project names in stored order.
func (s *Store) ListProjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.graph.Projects))
	for i, p := range s.graph.Projects {
		names[i] = p.Name
	}
	return names
}

// ListSubsystems returns the subsystem names of a project in stored order.
func (s *Store) ListSubsystems(project string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(p.Subsystems))
	for i, sub := range p.Subsystems {
		names[i] = sub.Name
	}
	return names, nil
}

// ListRequirements returns the requirements of a subsystem in list order.
func (s *Store) ListRequirements(project, subsystem string) ([]*types.Requirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, sub, err := s.subsystem(project, subsystem)
	if err != nil {
		return nil, err
	}
	return sub.Clone().Requirements, nil
}

// GetRequirement finds a requirement anywhere in a project.
func (s *Store) GetRequirement(project, id string) (types.Located, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return types.Located{}, err
	}
	loc, ok := trace.NewIndex(p).Get(id)
	if !ok {
		return types.Located{}, notFound(project, "*", id)
	}
	return types.Located{Subsystem: loc.Subsystem, Requirement: loc.Requirement.Clone()}, nil
}

// FindChildren returns the requirements whose parent is id, across all
// subsystems of the project, in project order. id need not exist.
func (s *Store) FindChildren(project, id string) ([]types.Located, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return nil, err
	}
	children := trace.NewIndex(p).Children(id)
	out := make([]types.Located, len(children))
	for i, c := range children {
		out[i] = types.Located{Subsystem: c.Subsystem, Requirement: c.Requirement.Clone()}
	}
	return out, nil
}

// PreviewChildren counts the children of id and samples the first few ids
// so that a caller can warn before deleting or renaming id.
func (s *Store) PreviewChildren(project, id string) (types.ChildPreview, error) {
	children, err := s.FindChildren(project, id)
	if err != nil {
		return types.ChildPreview{}, err
	}
	preview := types.ChildPreview{Count: len(children)}
	for i := 0; i < len(children) && i < types.PreviewSampleSize; i++ {
		preview.Sample = append(preview.Sample, children[i].Requirement.ID)
	}
	return preview, nil
}

// AllIDs returns the set of requirement ids in a project.
func (s *Store) AllIDs(project string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return nil, err
	}
	return p.IDs(), nil
}

// ProposeNextID suggests an unused id with the configured prefix.
func (s *Store) ProposeNextID(project string) (string, error) {
	ids, err := s.AllIDs(project)
	if err != nil {
		return "", err
	}
	return idalloc.ProposeNextID(ids, s.prefix), nil
}

// Search returns the requirements of every subsystem of a project visible
// under f, in subsystem then list order.
func (s *Store) Search(project string, f types.Filter) ([]types.Located, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return nil, err
	}
	return query.Project(p.Clone(), f), nil
}

// FilterRequirements returns the requirements of one subsystem visible
// under f, in list order.
func (s *Store) FilterRequirements(project, subsystem string, f types.Filter) ([]*types.Requirement, error) {
	reqs, err := s.ListRequirements(project, subsystem)
	if err != nil || f.IsZero() {
		return reqs, err
	}
	return query.Apply(reqs, f), nil
}

// Check reports integrity problems in a project without changing it.
func (s *Store) Check(project string) ([]types.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return nil, err
	}
	return trace.Check(p), nil
}

// RepairOrphans clears parent links that do not resolve and flags the
// requirements for review. Nothing is written when there is nothing to
// repair.
func (s *Store) RepairOrphans(project string) (types.Impact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.project(project)
	if err != nil {
		return types.Impact{}, err
	}
	affected := trace.RepairDangling(p)
	im := s.impact(types.OpRepairOrphans, project, "", affected)
	if len(affected) == 0 {
		s.logger.Debug("no orphans to repair", zap.String("project", project))
		return im, nil
	}
	return im, s.persist()
}
