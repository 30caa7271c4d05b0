// Package query filters requirement lists by free text and type.
package query

import (
	"strings"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Match reports whether r is visible under f. The text is checked against
// the id, the plain-text description, the parent id and the remaining
// displayed columns (type, value, unit, status, method). The text is used
// as given: a single space matches only fields that contain one.
func Match(f types.Filter, r *types.Requirement) bool {
	if !f.AllTypes() && r.Type != f.Type {
		return false
	}
	if f.Text == "" {
		return true
	}
	needle := strings.ToLower(f.Text)
	for _, field := range columns(r) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func columns(r *types.Requirement) []string {
	return []string{
		r.ID,
		textnorm.ToPlainText(r.Description),
		r.ParentID,
		string(r.Type),
		r.Value,
		r.Unit,
		string(r.Status),
		string(r.Method),
	}
}

// Apply returns the requirements of reqs visible under f, in their
// original order. The input slice is not modified.
func Apply(reqs []*types.Requirement, f types.Filter) []*types.Requirement {
	out := make([]*types.Requirement, 0, len(reqs))
	for _, r := range reqs {
		if Match(f, r) {
			out = append(out, r)
		}
	}
	return out
}

// Project searches every subsystem of p and returns the hits in subsystem
// then list order.
func Project(p *types.Project, f types.Filter) []types.Located {
	hits := []types.Located{}
	p.Walk(func(s *types.Subsystem, r *types.Requirement) bool {
		if Match(f, r) {
			hits = append(hits, types.Located{Subsystem: s.Name, Requirement: r})
		}
		return true
	})
	return hits
}
