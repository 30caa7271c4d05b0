package types

// Direction moves a requirement within its subsystem list.
type Direction int

// Reorder directions.
const (
	Up Direction = iota
	Down
)

// Located pairs a requirement with the subsystem that holds it.
type Located struct {
	Subsystem   string
	Requirement *Requirement
}

// Operation names recorded on Impact.
const (
	OpUpdateRequirement = "update_requirement"
	OpRenameRequirement = "rename_requirement"
	OpDeleteRequirement = "delete_requirement"
	OpDeleteSubsystem   = "delete_subsystem"
	OpRepairOrphans     = "repair_orphans"
)

// Impact describes the side effects of a mutation on other requirements:
// Affected lists the ids whose parent link was rewritten or cleared and
// which now carry NeedsReview. ChangeID correlates the mutation with the
// log.
type Impact struct {
	ChangeID string
	Op       string
	Project  string
	Target   string
	Affected []string
}

// ChildPreview summarizes the children of a requirement before a
// destructive edit so that a collaborator can warn the user.
type ChildPreview struct {
	Count  int
	Sample []string // At most PreviewSampleSize ids, in project order.
}

// PreviewSampleSize bounds ChildPreview.Sample.
const PreviewSampleSize = 3

// Issue kinds reported by an integrity check.
const (
	IssueDanglingParent = "dangling_parent"
	IssueDuplicateID    = "duplicate_id"
	IssueSelfParent     = "self_parent"
	IssueCycle          = "cycle"
	IssueInvalidID      = "invalid_id"
)

// Issue is one integrity problem found in a loaded project.
type Issue struct {
	Kind      string
	Subsystem string
	ID        string
	ParentID  string
}

// Engine is the surface the user-facing layer calls. Mutations validate,
// apply and persist as one unit; a failed validation leaves the graph
// untouched.
type Engine interface {
	CreateProject(name string, seed []string) error
	RenameProject(oldName, newName string) error
	DeleteProject(name string) error

	AddSubsystem(project, name string) error
	RenameSubsystem(project, oldName, newName string) error
	DeleteSubsystem(project, name string) (Impact, error)

	AddRequirement(project, subsystem string, data Requirement) error
	UpdateRequirement(project, subsystem, targetID string, data Requirement) (Impact, error)
	DeleteRequirement(project, subsystem, id string) (Impact, error)
	Reorder(project, subsystem, id string, dir Direction) error

	ListProjects() []string
	ListSubsystems(project string) ([]string, error)
	ListRequirements(project, subsystem string) ([]*Requirement, error)
	GetRequirement(project, id string) (Located, error)
	FindChildren(project, id string) ([]Located, error)
	PreviewChildren(project, id string) (ChildPreview, error)
	AllIDs(project string) (map[string]struct{}, error)
	ProposeNextID(project string) (string, error)

	Search(project string, f Filter) ([]Located, error)
	FilterRequirements(project, subsystem string, f Filter) ([]*Requirement, error)

	Check(project string) ([]Issue, error)
	RepairOrphans(project string) (Impact, error)

	Snapshot() *Graph
	Save() error
	Reload() error
}
