package types

import "sort"

// StandardSubsystems seeds a project created with the standard structure.
var StandardSubsystems = []string{
	"Mission", "Payload", "AOCS", "EPS", "TCS", "COMMS", "OBDH", "Structure",
}

// SubsystemChoices lists the names offered for a single-subsystem project.
var SubsystemChoices = []string{
	"Mission", "Payload", "AOCS", "EPS", "TCS", "COMMS", "OBDH", "Structure",
	"Propulsion", "Ground Segment",
}

// Graph is the whole persisted document: an ordered list of projects.
type Graph struct {
	Projects []*Project
}

// Project owns an ordered list of subsystems. Requirement ids are unique
// across all of its subsystems.
type Project struct {
	Name       string
	Subsystems []*Subsystem
}

// Subsystem owns a manually ordered list of requirements.
type Subsystem struct {
	Name         string
	Requirements []*Requirement
}

// NewGraph returns an empty graph.
func NewGraph() *Graph { return &Graph{} }

// Project returns the project with the given name, or nil.
func (g *Graph) Project(name string) *Project {
	if i := g.ProjectIndex(name); i >= 0 {
		return g.Projects[i]
	}
	return nil
}

// ProjectIndex returns the position of the named project, or -1.
func (g *Graph) ProjectIndex(name string) int {
	for i, p := range g.Projects {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{Projects: make([]*Project, len(g.Projects))}
	for i, p := range g.Projects {
		c.Projects[i] = p.Clone()
	}
	return c
}

// Subsystem returns the subsystem with the given name, or nil.
func (p *Project) Subsystem(name string) *Subsystem {
	if i := p.SubsystemIndex(name); i >= 0 {
		return p.Subsystems[i]
	}
	return nil
}

// SubsystemIndex returns the position of the named subsystem, or -1.
func (p *Project) SubsystemIndex(name string) int {
	for i, s := range p.Subsystems {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Walk calls fn for every requirement in subsystem then list order. It
// stops early when fn returns false.
func (p *Project) Walk(fn func(sub *Subsystem, r *Requirement) bool) {
	for _, s := range p.Subsystems {
		for _, r := range s.Requirements {
			if !fn(s, r) {
				return
			}
		}
	}
}

// IDs returns the set of requirement ids in the project.
func (p *Project) IDs() map[string]struct{} {
	ids := make(map[string]struct{})
	p.Walk(func(_ *Subsystem, r *Requirement) bool {
		ids[r.ID] = struct{}{}
		return true
	})
	return ids
}

// Len returns the number of requirements in the project.
func (p *Project) Len() int {
	n := 0
	for _, s := range p.Subsystems {
		n += len(s.Requirements)
	}
	return n
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	c := &Project{Name: p.Name, Subsystems: make([]*Subsystem, len(p.Subsystems))}
	for i, s := range p.Subsystems {
		c.Subsystems[i] = s.Clone()
	}
	return c
}

// Index returns the position of the requirement with the given id, or -1.
func (s *Subsystem) Index(id string) int {
	for i, r := range s.Requirements {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of s.
func (s *Subsystem) Clone() *Subsystem {
	c := &Subsystem{Name: s.Name, Requirements: make([]*Requirement, len(s.Requirements))}
	for i, r := range s.Requirements {
		c.Requirements[i] = r.Clone()
	}
	return c
}

// DisplayOrder returns the subsystem names of p sorted by the canonical
// StandardSubsystems order; other names follow in stored order. Storage
// order is not changed.
func DisplayOrder(p *Project) []string {
	rank := make(map[string]int, len(StandardSubsystems))
	for i, name := range StandardSubsystems {
		rank[name] = i
	}
	names := make([]string, len(p.Subsystems))
	for i, s := range p.Subsystems {
		names[i] = s.Name
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, ok := rank[names[i]]
		if !ok {
			ri = len(StandardSubsystems)
		}
		rj, ok := rank[names[j]]
		if !ok {
			rj = len(StandardSubsystems)
		}
		return ri < rj
	})
	return names
}
