package trace

import (
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Check reports integrity problems in p: ids that are empty or contain
// whitespace, ids used more than once, self-parents, dangling parents, and
// requirements that sit on a parent cycle. Data written through the store
// never has these; files from older versions or edited by hand may.
func Check(p *types.Project) []types.Issue {
	var issues []types.Issue
	idx := NewIndex(p)
	seen := make(map[string]bool)

	p.Walk(func(s *types.Subsystem, r *types.Requirement) bool {
		issue := func(kind string) {
			issues = append(issues, types.Issue{
				Kind:      kind,
				Subsystem: s.Name,
				ID:        r.ID,
				ParentID:  r.ParentID,
			})
		}

		probe := types.Requirement{ID: r.ID}
		if err := probe.ValidateFields(); err != nil {
			issue(types.IssueInvalidID)
		}
		if seen[r.ID] {
			issue(types.IssueDuplicateID)
		}
		seen[r.ID] = true

		switch {
		case r.IsRoot():
		case r.ParentID == r.ID:
			issue(types.IssueSelfParent)
		case !idx.Has(r.ParentID):
			issue(types.IssueDanglingParent)
		case onCycle(idx, r.ID):
			issue(types.IssueCycle)
		}
		return true
	})
	return issues
}

// onCycle reports whether walking up from id returns to id.
func onCycle(idx *Index, id string) bool {
	loc, ok := idx.Get(id)
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	for current := loc.Requirement.ParentID; current != ""; {
		if current == id {
			return true
		}
		if seen[current] {
			// A cycle further up that does not include id.
			return false
		}
		seen[current] = true
		next, ok := idx.Get(current)
		if !ok {
			return false
		}
		current = next.Requirement.ParentID
	}
	return false
}
