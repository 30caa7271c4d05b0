package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Index is a SQLite database holding one graph snapshot.
type Index struct {
	db *sql.DB
}

// Open creates the schema in the database at dsn, which must be empty.
// Use ":memory:" for a private in-memory index.
func Open(ctx context.Context, dsn string) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Build returns an in-memory index loaded with g.
func Build(ctx context.Context, g *types.Graph) (*Index, error) {
	idx, err := Open(ctx, ":memory:")
	if err != nil {
		return nil, err
	}
	if err := idx.Load(ctx, g); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Load replaces the indexed snapshot with g.
func (idx *Index) Load(ctx context.Context, g *types.Graph) error {
	return loadGraph(ctx, idx.db, g)
}

// WriteFile exports g as a standalone SQLite database at path. The file is
// built under a temporary name and renamed into place.
func WriteFile(ctx context.Context, path string, g *types.Graph) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	idx, err := Open(ctx, tmpName)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := idx.Load(ctx, g); err != nil {
		idx.Close()
		os.Remove(tmpName)
		return err
	}
	if err := idx.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing database: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// projectKey returns the row key of a project and its requirement count.
func (idx *Index) projectKey(ctx context.Context, name string) (string, int, error) {
	var key string
	err := idx.db.QueryRowContext(ctx,
		"SELECT project_id FROM projects WHERE name = ?", name).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("%w: %q", types.ErrProjectNotFound, name)
	}
	if err != nil {
		return "", 0, fmt.Errorf("looking up project %q: %w", name, err)
	}
	var n int
	if err := idx.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requirements WHERE project_id = ?", key).Scan(&n); err != nil {
		return "", 0, fmt.Errorf("counting requirements: %w", err)
	}
	return key, n, nil
}
