package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satreq/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var project, format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project to CSV, HTML, Markdown or SQLite",
		Long: `Export writes one project as a CSV table or as an HTML or Markdown
document grouped by subsystem. The SQLite format writes the whole data
file to a database for ad-hoc queries.

Example:
  satreq export --format html
  satreq export -p Sentinel-6 --format csv -o sentinel.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultExportPath(p, f.Extension())
			}
			if err := export.ToFile(cmd.Context(), f, output, eng.Snapshot(), p, a.now()); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"project": p, "format": string(f), "path": output})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", p, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv, html, markdown (md) or sqlite")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <project><ext>)")
	return cmd
}

// defaultExportPath names the export file after the project.
func defaultExportPath(project, ext string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>| `, r) {
			return '_'
		}
		return r
	}, project)
	return name + ext
}
