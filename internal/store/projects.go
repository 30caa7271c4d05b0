package store

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/internal/trace"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// CreateProject adds an empty project with the given subsystems, in order.
func (s *Store) CreateProject(name string, seed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkName("project", name); err != nil {
		return err
	}
	if s.graph.Project(name) != nil {
		return &types.DuplicateNameError{Kind: "project", Name: name}
	}
	p := &types.Project{Name: name, Subsystems: make([]*types.Subsystem, 0, len(seed))}
	for _, sub := range seed {
		if err := checkName("subsystem", sub); err != nil {
			return err
		}
		if p.Subsystem(sub) != nil {
			return &types.DuplicateNameError{Kind: "subsystem", Name: sub}
		}
		p.Subsystems = append(p.Subsystems, &types.Subsystem{Name: sub, Requirements: []*types.Requirement{}})
	}

	s.graph.Projects = append(s.graph.Projects, p)
	s.logger.Debug("project created", zap.String("project", name), zap.Int("subsystems", len(seed)))
	return s.persist()
}

// RenameProject changes a project's name. Parent links are project-scoped
// and need no rewrite. Renaming to the same name is a no-op.
func (s *Store) RenameProject(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(oldName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if err := checkName("project", newName); err != nil {
		return err
	}
	if s.graph.Project(newName) != nil {
		return &types.DuplicateNameError{Kind: "project", Name: newName}
	}
	p.Name = newName
	s.logger.Debug("project renamed", zap.String("from", oldName), zap.String("to", newName))
	return s.persist()
}

// DeleteProject removes a project and everything in it.
func (s *Store) DeleteProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.graph.ProjectIndex(name)
	if i < 0 {
		_, err := s.project(name)
		return err
	}
	n := s.graph.Projects[i].Len()
	s.graph.Projects = append(s.graph.Projects[:i], s.graph.Projects[i+1:]...)
	s.logger.Info("project deleted", zap.String("project", name), zap.Int("requirements", n))
	return s.persist()
}

// AddSubsystem appends an empty subsystem to a project.
func (s *Store) AddSubsystem(project, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(project)
	if err != nil {
		return err
	}
	if err := checkName("subsystem", name); err != nil {
		return err
	}
	if p.Subsystem(name) != nil {
		return &types.DuplicateNameError{Kind: "subsystem", Name: name}
	}
	p.Subsystems = append(p.Subsystems, &types.Subsystem{Name: name, Requirements: []*types.Requirement{}})
	return s.persist()
}

// RenameSubsystem changes a subsystem's name and keeps its position.
func (s *Store) RenameSubsystem(project, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sub, err := s.subsystem(project, oldName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if err := checkName("subsystem", newName); err != nil {
		return err
	}
	if p.Subsystem(newName) != nil {
		return &types.DuplicateNameError{Kind: "subsystem", Name: newName}
	}
	sub.Name = newName
	return s.persist()
}

// DeleteSubsystem removes a subsystem and its requirements. Requirements
// elsewhere in the project whose parent was removed lose the link and are
// flagged for review.
func (s *Store) DeleteSubsystem(project, name string) (types.Impact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sub, err := s.subsystem(project, name)
	if err != nil {
		return types.Impact{}, err
	}
	removed := make(map[string]struct{}, len(sub.Requirements))
	for _, r := range sub.Requirements {
		removed[r.ID] = struct{}{}
	}

	i := p.SubsystemIndex(name)
	p.Subsystems = append(p.Subsystems[:i], p.Subsystems[i+1:]...)
	affected := trace.Orphan(p, removed)

	im := s.impact(types.OpDeleteSubsystem, project, name, affected)
	return im, s.persist()
}
