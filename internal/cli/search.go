package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

func newSearchCmd(a *app) *cobra.Command {
	var project, subsystem, typ string
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Filter requirements by text and type",
		Long: `Search matches the text case-insensitively against the id, description,
parent and the other displayed columns of every requirement of a project,
or of one subsystem with --subsystem.

Example:
  satreq search thrust --type Performance
  satreq search TBD -s EPS
  satreq search --type Interface`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			var text string
			if len(args) == 1 {
				text = args[0]
			}
			f, err := parseFilter(text, typ)
			if err != nil {
				return err
			}

			var rows []types.Located
			if subsystem != "" {
				reqs, err := eng.FilterRequirements(p, subsystem, f)
				if err != nil {
					return err
				}
				rows = locate(subsystem, reqs)
			} else if rows, err = eng.Search(p, f); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			return requirementRows(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")
	cmd.Flags().StringVarP(&subsystem, "subsystem", "s", "", "only this subsystem")
	cmd.Flags().StringVar(&typ, "type", "", "only this type (All for every type)")
	return cmd
}

// parseFilter builds a filter from the text and type flags. The text is
// kept as typed; an empty type or "All" selects every type.
func parseFilter(text, typ string) (types.Filter, error) {
	f := types.Filter{Text: text}
	if typ == "" || strings.EqualFold(typ, string(types.TypeAll)) {
		return f, nil
	}
	t, err := types.ParseType(typ)
	if err != nil {
		return types.Filter{}, err
	}
	f.Type = t
	return f, nil
}

func locate(subsystem string, reqs []*types.Requirement) []types.Located {
	rows := make([]types.Located, len(reqs))
	for i, r := range reqs {
		rows[i] = types.Located{Subsystem: subsystem, Requirement: r}
	}
	return rows
}

func newCheckCmd(a *app) *cobra.Command {
	var project string
	var repair bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report integrity problems in a project",
		Long: "Check reports dangling parents, duplicate ids, self-parents and cycles\n" +
			"found in the loaded data. With --repair, dangling parents are cleared\n" +
			"and the requirements flagged for review.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			issues, err := eng.Check(p)
			if err != nil {
				return err
			}
			var imp types.Impact
			if repair {
				if imp, err = eng.RepairOrphans(p); err != nil {
					return err
				}
			}
			if a.flags.jsonMode {
				out := map[string]any{"issues": issues}
				if repair {
					out["repaired"] = imp.Affected
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(w, "%s: no problems found\n", p)
			} else {
				tw := newTable(w)
				fmt.Fprintln(tw, "PROBLEM\tSUBSYSTEM\tID\tPARENT")
				for _, is := range issues {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", is.Kind, is.Subsystem, is.ID, dash(is.ParentID))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if repair && len(imp.Affected) > 0 {
				fmt.Fprintf(w, "Cleared dangling parents: %s\n", strings.Join(imp.Affected, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")
	cmd.Flags().BoolVar(&repair, "repair", false, "clear dangling parents and flag the requirements for review")
	return cmd
}
