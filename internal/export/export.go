// Package export renders a project for use outside the tool: a CSV table
// for spreadsheets, an HTML or Markdown document for review and print, and
// a SQLite database for ad-hoc queries.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mesh-intelligence/satreq/internal/sqlite"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Format names an export format.
type Format string

// Export formats.
const (
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatSQLite   Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatHTML, FormatMarkdown, FormatSQLite}

// Extension returns the conventional file extension of f.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	case FormatSQLite:
		return ".db"
	default:
		return ".csv"
	}
}

// ParseFormat accepts a format name case-insensitively; "md" is an alias
// for markdown.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &types.ValidationError{Field: "format", Value: s, Reason: types.ErrUnknownLabel}
}

// ToFile exports the named project of g to path. The SQLite format holds
// the whole graph; the others hold one project.
func ToFile(ctx context.Context, f Format, path string, g *types.Graph, project string, generated time.Time) error {
	p := g.Project(project)
	if p == nil {
		return fmt.Errorf("%w: %q", types.ErrProjectNotFound, project)
	}
	if f == FormatSQLite {
		return sqlite.WriteFile(ctx, path, g)
	}

	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, p)
	case FormatHTML:
		err = WriteHTML(&buf, p, generated)
	case FormatMarkdown:
		err = WriteMarkdown(&buf, p, generated)
	default:
		return &types.ValidationError{Field: "format", Value: string(f), Reason: types.ErrUnknownLabel}
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
