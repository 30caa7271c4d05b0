package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

var requirementColumns = []string{
	"row_id", "project_id", "subsystem_id", "req_id", "type",
	"description", "description_markup", "parent_id", "value", "unit",
	"status", "status_category", "method", "last_modified", "needs_review",
	"ordinal",
}

// loadGraph replaces the contents of the index with g. Loading is
// transactional: either the whole graph is indexed or the previous
// contents remain.
func loadGraph(ctx context.Context, db *sql.DB, g *types.Graph) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insertProject, err := tx.PrepareContext(ctx,
		"INSERT INTO projects (project_id, name, ordinal) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert for projects: %w", err)
	}
	defer insertProject.Close()

	insertSubsystem, err := tx.PrepareContext(ctx,
		"INSERT INTO subsystems (subsystem_id, project_id, name, ordinal) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert for subsystems: %w", err)
	}
	defer insertSubsystem.Close()

	insertRequirement, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO requirements (%s) VALUES (%s)",
		strings.Join(requirementColumns, ", "),
		placeholders(len(requirementColumns)),
	))
	if err != nil {
		return fmt.Errorf("preparing insert for requirements: %w", err)
	}
	defer insertRequirement.Close()

	for pi, p := range g.Projects {
		projectID := newRowID()
		if _, err := insertProject.ExecContext(ctx, projectID, p.Name, pi); err != nil {
			return fmt.Errorf("inserting project %q: %w", p.Name, err)
		}
		for si, s := range p.Subsystems {
			subsystemID := newRowID()
			if _, err := insertSubsystem.ExecContext(ctx, subsystemID, projectID, s.Name, si); err != nil {
				return fmt.Errorf("inserting subsystem %s/%s: %w", p.Name, s.Name, err)
			}
			for ri, r := range s.Requirements {
				args := []any{
					newRowID(), projectID, subsystemID, r.ID, string(r.Type),
					textnorm.ToPlainText(r.Description), r.Description, r.ParentID, r.Value, r.Unit,
					string(r.Status), r.Status.Category(), string(r.Method), formatTime(r.LastModified), boolToInt(r.NeedsReview),
					ri,
				}
				if _, err := insertRequirement.ExecContext(ctx, args...); err != nil {
					return fmt.Errorf("inserting requirement %s/%s/%s: %w", p.Name, s.Name, r.ID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

func newRowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.In(time.Local).Format(types.TimestampLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
