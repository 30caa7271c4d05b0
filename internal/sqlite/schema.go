// Package sqlite builds a SQLite report index from a requirement graph
// snapshot. The JSON data file stays the source of truth; the index is
// rebuilt on demand for traceability queries and exported as a standalone
// database file.
package sqlite

// Schema DDL for the report index.
const (
	createProjects = `CREATE TABLE projects (
    project_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    ordinal INTEGER NOT NULL
);`

	createSubsystems = `CREATE TABLE subsystems (
    subsystem_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    UNIQUE (project_id, name),
    FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
);`

	createRequirements = `CREATE TABLE requirements (
    row_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    subsystem_id TEXT NOT NULL,
    req_id TEXT NOT NULL,
    type TEXT NOT NULL,
    description TEXT NOT NULL,
    description_markup TEXT NOT NULL,
    parent_id TEXT NOT NULL,
    value TEXT NOT NULL,
    unit TEXT NOT NULL,
    status TEXT NOT NULL,
    status_category TEXT NOT NULL,
    method TEXT NOT NULL,
    last_modified TEXT,
    needs_review INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE,
    FOREIGN KEY (subsystem_id) REFERENCES subsystems(subsystem_id) ON DELETE CASCADE
);`

	indexRequirementID     = `CREATE INDEX idx_requirements_req ON requirements(project_id, req_id);`
	indexRequirementParent = `CREATE INDEX idx_requirements_parent ON requirements(project_id, parent_id);`
)

// schemaStatements lists DDL in creation order.
var schemaStatements = []string{
	createProjects,
	createSubsystems,
	createRequirements,
	indexRequirementID,
	indexRequirementParent,
}

// tables lists the tables in deletion order.
var tables = []string{"requirements", "subsystems", "projects"}
