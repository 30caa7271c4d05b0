// Package trace resolves parent/child links between the requirements of a
// project: it detects cycles, rewrites links when a parent is renamed,
// orphans children when a parent disappears, and reports integrity
// problems in loaded data.
package trace

import (
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Index maps the requirement ids of one project to their location and to
// their children. It is a snapshot: mutate the project, then rebuild.
type Index struct {
	byID     map[string]types.Located
	children map[string][]types.Located
}

// NewIndex scans p once. When an id occurs more than once (files written
// by older versions), the first occurrence wins.
func NewIndex(p *types.Project) *Index {
	idx := &Index{
		byID:     make(map[string]types.Located),
		children: make(map[string][]types.Located),
	}
	p.Walk(func(s *types.Subsystem, r *types.Requirement) bool {
		loc := types.Located{Subsystem: s.Name, Requirement: r}
		if _, dup := idx.byID[r.ID]; !dup {
			idx.byID[r.ID] = loc
		}
		if !r.IsRoot() {
			idx.children[r.ParentID] = append(idx.children[r.ParentID], loc)
		}
		return true
	})
	return idx
}

// Get returns the requirement with the given id.
func (idx *Index) Get(id string) (types.Located, bool) {
	loc, ok := idx.byID[id]
	return loc, ok
}

// Has reports whether id exists in the project.
func (idx *Index) Has(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

// Children returns the requirements whose parent is id, in project order.
func (idx *Index) Children(id string) []types.Located {
	return idx.children[id]
}

// HasCycle reports whether making candidateParentID the parent of
// targetID would make targetID its own ancestor. It walks up from the
// candidate following parent links; reaching targetID, or revisiting a
// node of a cycle already present in the data, is a cycle. The walk stops
// at a root or at a dangling parent. Cost is linear in the chain depth.
func HasCycle(idx *Index, targetID, candidateParentID string) bool {
	seen := make(map[string]bool)
	current := candidateParentID
	for current != "" {
		if current == targetID {
			return true
		}
		if seen[current] {
			return true
		}
		seen[current] = true

		loc, ok := idx.Get(current)
		if !ok {
			return false
		}
		current = loc.Requirement.ParentID
	}
	return false
}

// Repoint rewrites every parent link equal to oldID to newID and flags the
// rewritten requirements for review. Returns the ids of the requirements
// it changed, in project order.
func Repoint(p *types.Project, oldID, newID string) []string {
	var affected []string
	p.Walk(func(_ *types.Subsystem, r *types.Requirement) bool {
		if r.ParentID == oldID {
			r.ParentID = newID
			r.NeedsReview = true
			affected = append(affected, r.ID)
		}
		return true
	})
	return affected
}

// Orphan clears every parent link that points at one of removed and flags
// those requirements for review. Ids in removed that still exist in p are
// skipped, so a duplicate left behind by older data keeps its children.
// Returns the ids of the requirements it changed, in project order.
func Orphan(p *types.Project, removed map[string]struct{}) []string {
	if len(removed) == 0 {
		return nil
	}
	present := p.IDs()
	var affected []string
	p.Walk(func(_ *types.Subsystem, r *types.Requirement) bool {
		if r.IsRoot() {
			return true
		}
		if _, gone := removed[r.ParentID]; !gone {
			return true
		}
		if _, still := present[r.ParentID]; still {
			return true
		}
		r.ParentID = ""
		r.NeedsReview = true
		affected = append(affected, r.ID)
		return true
	})
	return affected
}

// Dangling returns the requirements whose parent id does not resolve.
func Dangling(p *types.Project) []types.Located {
	ids := p.IDs()
	var out []types.Located
	p.Walk(func(s *types.Subsystem, r *types.Requirement) bool {
		if r.IsRoot() {
			return true
		}
		if _, ok := ids[r.ParentID]; !ok {
			out = append(out, types.Located{Subsystem: s.Name, Requirement: r})
		}
		return true
	})
	return out
}

// RepairDangling clears dangling parent links and flags the affected
// requirements for review. Links are never cleared silently.
func RepairDangling(p *types.Project) []string {
	var affected []string
	for _, loc := range Dangling(p) {
		loc.Requirement.ParentID = ""
		loc.Requirement.NeedsReview = true
		affected = append(affected, loc.Requirement.ID)
	}
	return affected
}
