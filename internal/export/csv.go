package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{
	"Project", "Subsystem", "ID", "Type", "Description", "Value", "Unit",
	"Status", "Method", "Parent", "Needs Review", "Last Modified",
}

// WriteCSV writes one row per requirement of p, in stored order, with the
// description flattened to plain text.
func WriteCSV(w io.Writer, p *types.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	var err error
	p.Walk(func(s *types.Subsystem, r *types.Requirement) bool {
		err = cw.Write([]string{
			p.Name,
			s.Name,
			r.ID,
			string(r.Type),
			textnorm.ToPlainText(r.Description),
			r.Value,
			r.Unit,
			string(r.Status),
			string(r.Method),
			r.ParentID,
			strconv.FormatBool(r.NeedsReview),
			formatTime(r.LastModified),
		})
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(types.TimestampLayout)
}
