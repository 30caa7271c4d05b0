package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satreq/internal/sqlite"
)

// reportIndex loads a snapshot of the engine into an in-memory index.
func (a *app) reportIndex(cmd *cobra.Command, flag string) (*sqlite.Index, string, error) {
	eng, p, err := a.engineProject(flag)
	if err != nil {
		return nil, "", err
	}
	idx, err := sqlite.Build(cmd.Context(), eng.Snapshot())
	if err != nil {
		return nil, "", sysError("build report index: %w", err)
	}
	return idx, p, nil
}

func newTraceCmd(a *app) *cobra.Command {
	var project string
	var up bool
	cmd := &cobra.Command{
		Use:   "trace <id>",
		Short: "Show the requirements derived from a requirement",
		Long: `Trace lists every requirement below id across subsystems, nearest
first. With --up it lists the chain of parents instead.

Example:
  satreq trace SYS-001
  satreq trace EPS-004 --up`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, p, err := a.reportIndex(cmd, project)
			if err != nil {
				return err
			}
			defer idx.Close()
			if _, err := a.eng.GetRequirement(p, args[0]); err != nil {
				return err
			}

			var nodes []sqlite.Node
			if up {
				nodes, err = idx.Ancestors(cmd.Context(), p, args[0])
			} else {
				nodes, err = idx.Descendants(cmd.Context(), p, args[0])
			}
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), nodes)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, args[0])
			for _, n := range nodes {
				line := strings.Repeat("  ", n.Depth) + n.ID
				switch {
				case n.Missing:
					line += " (missing)"
				default:
					line += fmt.Sprintf(" [%s] %s", n.Subsystem, n.Status)
					if n.NeedsReview {
						line += " *"
					}
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")
	cmd.Flags().BoolVar(&up, "up", false, "list ancestors instead of descendants")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count requirements per subsystem and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, p, err := a.reportIndex(cmd, project)
			if err != nil {
				return err
			}
			defer idx.Close()

			sum, err := idx.Summary(cmd.Context(), p)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), sum)
			}

			w := cmd.OutOrStdout()
			tw := newTable(w)
			fmt.Fprintln(tw, "SUBSYSTEM\tTOTAL\tVERIFIED\tPENDING\tCLOSED\tDRAFT\tOTHER\tREVIEW")
			for _, s := range sum.Subsystems {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
					s.Name, s.Total, s.Verified, s.Pending, s.Closed, s.Draft, s.Other, s.Flagged)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%s: %d requirements, %d need review, %d with a missing parent\n",
				sum.Project, sum.Total, sum.Flagged, sum.Orphans)
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")
	return cmd
}
