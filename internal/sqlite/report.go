package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Node is one requirement in a traceability report.
type Node struct {
	ID          string `json:"id"`
	Subsystem   string `json:"subsystem,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Status      string `json:"status,omitempty"`
	NeedsReview bool   `json:"needs_review"`
	Depth       int    `json:"depth"`
	Missing     bool   `json:"missing,omitempty"` // Referenced as a parent but not present.
}

const descendantsSQL = `WITH RECURSIVE tree(req_id, depth) AS (
    SELECT req_id, 1 FROM requirements
    WHERE project_id = ? AND parent_id = ?
    UNION
    SELECT r.req_id, tree.depth + 1 FROM requirements r
    JOIN tree ON r.parent_id = tree.req_id
    WHERE r.project_id = ? AND tree.depth < ?
)
SELECT r.req_id, s.name, r.parent_id, r.status, r.needs_review, MIN(tree.depth) AS depth
FROM tree
JOIN requirements r ON r.req_id = tree.req_id AND r.project_id = ?
JOIN subsystems s ON s.subsystem_id = r.subsystem_id
WHERE r.req_id != ?
GROUP BY r.row_id
ORDER BY depth, s.ordinal, r.ordinal`

// Descendants returns every requirement below id, nearest first. Depth 1
// are the direct children. Cycles in legacy data are cut off.
func (idx *Index) Descendants(ctx context.Context, project, id string) ([]Node, error) {
	key, n, err := idx.projectKey(ctx, project)
	if err != nil {
		return nil, err
	}
	rows, err := idx.db.QueryContext(ctx, descendantsSQL, key, id, key, n, key, id)
	if err != nil {
		return nil, fmt.Errorf("querying descendants of %s: %w", id, err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var nd Node
		var review int
		if err := rows.Scan(&nd.ID, &nd.Subsystem, &nd.ParentID, &nd.Status, &review, &nd.Depth); err != nil {
			return nil, fmt.Errorf("scanning descendant: %w", err)
		}
		nd.NeedsReview = review != 0
		nodes = append(nodes, nd)
	}
	return nodes, rows.Err()
}

const ancestorsSQL = `WITH RECURSIVE chain(req_id, depth) AS (
    SELECT parent_id, 1 FROM requirements
    WHERE project_id = ? AND req_id = ? AND parent_id != ''
    UNION
    SELECT r.parent_id, chain.depth + 1 FROM requirements r
    JOIN chain ON r.req_id = chain.req_id
    WHERE r.project_id = ? AND r.parent_id != '' AND chain.depth < ?
)
SELECT chain.req_id, COALESCE(s.name, ''), COALESCE(r.parent_id, ''), COALESCE(r.status, ''),
       COALESCE(r.needs_review, 0), r.row_id IS NULL, MIN(chain.depth) AS depth
FROM chain
LEFT JOIN requirements r ON r.req_id = chain.req_id AND r.project_id = ?
LEFT JOIN subsystems s ON s.subsystem_id = r.subsystem_id
WHERE chain.req_id != ?
GROUP BY chain.req_id
ORDER BY depth`

// Ancestors returns the parent chain of id, nearest first. A parent that
// does not exist ends the chain and is reported with Missing set.
func (idx *Index) Ancestors(ctx context.Context, project, id string) ([]Node, error) {
	key, n, err := idx.projectKey(ctx, project)
	if err != nil {
		return nil, err
	}
	rows, err := idx.db.QueryContext(ctx, ancestorsSQL, key, id, key, n, key, id)
	if err != nil {
		return nil, fmt.Errorf("querying ancestors of %s: %w", id, err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var nd Node
		var review, missing int
		if err := rows.Scan(&nd.ID, &nd.Subsystem, &nd.ParentID, &nd.Status, &review, &missing, &nd.Depth); err != nil {
			return nil, fmt.Errorf("scanning ancestor: %w", err)
		}
		nd.NeedsReview = review != 0
		nd.Missing = missing != 0
		nodes = append(nodes, nd)
	}
	return nodes, rows.Err()
}

// SubsystemSummary counts the requirements of one subsystem by status
// category.
type SubsystemSummary struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Verified int    `json:"verified"`
	Pending  int    `json:"pending"`
	Closed   int    `json:"closed"`
	Draft    int    `json:"draft"`
	Other    int    `json:"other"`
	Flagged  int    `json:"flagged"`
}

// Summary is the status report of a project.
type Summary struct {
	Project    string             `json:"project"`
	Total      int                `json:"total"`
	Flagged    int                `json:"flagged"`
	Orphans    int                `json:"orphans"`
	Subsystems []SubsystemSummary `json:"subsystems"`
}

const summarySQL = `SELECT s.name,
    COUNT(r.row_id),
    COALESCE(SUM(CASE WHEN r.status_category = ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN r.status_category = ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN r.status_category = ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN r.status_category = ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN r.status_category = ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(r.needs_review), 0)
FROM subsystems s
LEFT JOIN requirements r ON r.subsystem_id = s.subsystem_id
WHERE s.project_id = ?
GROUP BY s.subsystem_id
ORDER BY s.ordinal`

const orphansSQL = `SELECT COUNT(*) FROM requirements r
WHERE r.project_id = ? AND r.parent_id != ''
  AND NOT EXISTS (
    SELECT 1 FROM requirements p
    WHERE p.project_id = r.project_id AND p.req_id = r.parent_id
  )`

// Summary counts the requirements of a project per subsystem and status
// category, plus flagged and orphaned requirements.
func (idx *Index) Summary(ctx context.Context, project string) (Summary, error) {
	key, _, err := idx.projectKey(ctx, project)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Project: project, Subsystems: []SubsystemSummary{}}

	rows, err := idx.db.QueryContext(ctx, summarySQL,
		types.CategoryVerified, types.CategoryPending, types.CategoryClosed,
		types.CategoryDraft, types.CategoryOther, key)
	if err != nil {
		return Summary{}, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s SubsystemSummary
		if err := rows.Scan(&s.Name, &s.Total, &s.Verified, &s.Pending, &s.Closed, &s.Draft, &s.Other, &s.Flagged); err != nil {
			return Summary{}, fmt.Errorf("scanning summary: %w", err)
		}
		sum.Total += s.Total
		sum.Flagged += s.Flagged
		sum.Subsystems = append(sum.Subsystems, s)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	if err := idx.db.QueryRowContext(ctx, orphansSQL, key).Scan(&sum.Orphans); err != nil {
		return Summary{}, fmt.Errorf("counting orphans: %w", err)
	}
	return sum, nil
}
