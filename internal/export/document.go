package export

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

//go:embed templates/document.html.tmpl
var documentTemplate string

var documentTmpl = template.Must(template.New("document").Parse(documentTemplate))

// StatusClassReview marks rows flagged for review; it takes precedence
// over the status category.
const StatusClassReview = "review"

type document struct {
	Project   string
	Generated string
	Sections  []section
}

type section struct {
	Name string
	Rows []row
}

type row struct {
	ID          string
	Type        string
	Description template.HTML
	Markup      string
	Target      string
	Status      string
	StatusClass string
	Method      string
	Parent      string
}

// newDocument groups the requirements of p by subsystem in stored order.
// Empty subsystems get no section.
func newDocument(p *types.Project, generated time.Time) document {
	doc := document{Project: p.Name, Generated: formatTime(generated)}
	for _, s := range p.Subsystems {
		if len(s.Requirements) == 0 {
			continue
		}
		sec := section{Name: s.Name}
		for _, r := range s.Requirements {
			fragment := textnorm.Fragment(r.Description)
			sec.Rows = append(sec.Rows, row{
				ID:          r.ID,
				Type:        string(r.Type),
				Description: template.HTML(fragment),
				Markup:      fragment,
				Target:      strings.TrimSpace(r.Value + " " + r.Unit),
				Status:      string(r.Status),
				StatusClass: statusClass(r),
				Method:      string(r.Method),
				Parent:      r.ParentID,
			})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

func statusClass(r *types.Requirement) string {
	if r.NeedsReview {
		return StatusClassReview
	}
	return r.Status.Category()
}

// WriteHTML writes a printable document for p: one section and table per
// non-empty subsystem, descriptions rendered as rich text.
func WriteHTML(w io.Writer, p *types.Project, generated time.Time) error {
	if err := documentTmpl.Execute(w, newDocument(p, generated)); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}

// WriteMarkdown writes the same document as WriteHTML in GitHub-flavored
// Markdown. Descriptions are converted from their markup.
func WriteMarkdown(w io.Writer, p *types.Project, generated time.Time) error {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	doc := newDocument(p, generated)
	var b strings.Builder
	fmt.Fprintf(&b, "# Project: %s\n\nGenerated: %s\n", doc.Project, doc.Generated)
	for _, sec := range doc.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", sec.Name)
		b.WriteString("| ID | Type | Description | Target | Status | Method | Parent |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, r := range sec.Rows {
			desc, err := conv.ConvertString(r.Markup)
			if err != nil {
				return fmt.Errorf("converting description of %s: %w", r.ID, err)
			}
			status := cell(r.Status)
			if r.StatusClass == StatusClassReview {
				status += " (review)"
			}
			fmt.Fprintf(&b, "| **%s** | %s | %s | %s | %s | %s | %s |\n",
				cell(r.ID), cell(r.Type), cell(desc), cell(r.Target), status, cell(r.Method), cell(r.Parent))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// cell makes s safe inside a Markdown table cell.
func cell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\|`, "|")
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}
