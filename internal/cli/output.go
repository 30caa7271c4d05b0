package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

const descWidth = 60

// summary shortens the plain form of a description to one table cell.
func summary(desc string) string {
	s := textnorm.ToPlainText(desc)
	if r := []rune(s); len(r) > descWidth {
		return string(r[:descWidth-3]) + "..."
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(types.TimestampLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// requirementRows prints one line per requirement.
func requirementRows(w io.Writer, rows []types.Located) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSUBSYSTEM\tTYPE\tSTATUS\tPARENT\tDESCRIPTION")
	for _, l := range rows {
		r := l.Requirement
		id := r.ID
		if r.NeedsReview {
			id += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", id, l.Subsystem, r.Type, r.Status, dash(r.ParentID), summary(r.Description))
	}
	return tw.Flush()
}

func printImpact(w io.Writer, verb string, imp types.Impact) {
	fmt.Fprintln(w, verb)
	if len(imp.Affected) > 0 {
		fmt.Fprintf(w, "Flagged for review: %s\n", strings.Join(imp.Affected, ", "))
	}
}
