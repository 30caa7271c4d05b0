package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/satreq/internal/textnorm"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// reqFields holds the requirement flags shared by add and update.
type reqFields struct {
	id, typ, desc, descHTML, parent, value, unit, status, method string
}

func (f *reqFields) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.id, "id", "", "requirement id")
	fs.StringVar(&f.typ, "type", "", "type: "+joinLabels(types.RequirementTypes))
	fs.StringVar(&f.desc, "desc", "", "description as plain text")
	fs.StringVar(&f.descHTML, "desc-html", "", "description as HTML rich text")
	fs.StringVar(&f.parent, "parent", "", "parent requirement id")
	fs.StringVar(&f.value, "value", "", "target value")
	fs.StringVar(&f.unit, "unit", "", "unit of the target value")
	fs.StringVar(&f.status, "status", "", "status: "+joinLabels(types.Statuses))
	fs.StringVar(&f.method, "method", "", "verification method: "+joinLabels(types.Methods))
}

func joinLabels[T ~string](labels []T) string {
	s := make([]string, len(labels))
	for i, l := range labels {
		s[i] = string(l)
	}
	return strings.Join(s, ", ")
}

// apply overlays the flags that were set on r. Labels are parsed
// case-insensitively against the known sets.
func (f *reqFields) apply(fs *pflag.FlagSet, r *types.Requirement) error {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("id", &r.ID, f.id)
	switch {
	case fs.Changed("desc"):
		r.Description = textnorm.FromPlain(f.desc)
	case fs.Changed("desc-html"):
		r.Description = strings.TrimSpace(f.descHTML)
	}
	set("parent", &r.ParentID, f.parent)
	set("value", &r.Value, f.value)
	set("unit", &r.Unit, f.unit)
	if fs.Changed("type") {
		t, err := types.ParseType(f.typ)
		if err != nil {
			return err
		}
		r.Type = t
	}
	if fs.Changed("status") {
		s, err := types.ParseStatus(f.status)
		if err != nil {
			return err
		}
		r.Status = s
	}
	if fs.Changed("method") {
		m, err := types.ParseMethod(f.method)
		if err != nil {
			return err
		}
		r.Method = m
	}
	return nil
}

func newReqCmd(a *app) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:     "req",
		Aliases: []string{"requirement"},
		Short:   "Add, edit, delete and inspect requirements",
	}
	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")

	cmd.AddCommand(
		newReqAddCmd(a, &project),
		newReqUpdateCmd(a, &project),
		newReqDeleteCmd(a, &project),
		newReqMoveCmd(a, &project),
		newReqListCmd(a, &project),
		newReqShowCmd(a, &project),
		newReqChildrenCmd(a, &project),
		newReqNextIDCmd(a, &project),
	)
	return cmd
}

func newReqAddCmd(a *app, project *string) *cobra.Command {
	var f reqFields
	var subsystem string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a requirement to a subsystem",
		Long: `Add a requirement at the end of a subsystem. Without --id the next
free id with the configured prefix is used.

Example:
  satreq req add -s Mission --desc "Global coverage every 10 days"
  satreq req add -s EPS --id EPS-001 --parent SYS-001 --type Design --value 200 --unit W`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			var r types.Requirement
			if err := f.apply(cmd.Flags(), &r); err != nil {
				return err
			}
			if r.ID == "" {
				if r.ID, err = eng.ProposeNextID(p); err != nil {
					return err
				}
			}
			if err := eng.AddRequirement(p, subsystem, r); err != nil {
				return err
			}
			if a.flags.jsonMode {
				loc, err := eng.GetRequirement(p, r.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), loc.Requirement)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s/%s\n", r.ID, p, subsystem)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("desc", "desc-html")
	cmd.Flags().StringVarP(&subsystem, "subsystem", "s", "", "subsystem (required)")
	_ = cmd.MarkFlagRequired("subsystem")
	return cmd
}

func newReqUpdateCmd(a *app, project *string) *cobra.Command {
	var f reqFields
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a requirement",
		Long: `Edit the fields given by flags; the others keep their values. A new
--id renames the requirement and every child follows the new id.
Editing clears the review flag.

Example:
  satreq req update SYS-002 --status Verified --method Test
  satreq req update SYS-001 --id SYS-010`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			loc, err := eng.GetRequirement(p, args[0])
			if err != nil {
				return err
			}
			r := *loc.Requirement
			if err := f.apply(cmd.Flags(), &r); err != nil {
				return err
			}
			imp, err := eng.UpdateRequirement(p, loc.Subsystem, args[0], r)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), imp)
			}
			printImpact(cmd.OutOrStdout(), "Updated "+r.ID, imp)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("desc", "desc-html")
	return cmd
}

func newReqDeleteCmd(a *app, project *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a requirement",
		Long: "Delete a requirement. A requirement with children is deleted only\n" +
			"with --force; the children lose their parent and are flagged for review.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			loc, err := eng.GetRequirement(p, args[0])
			if err != nil {
				return err
			}
			preview, err := eng.PreviewChildren(p, args[0])
			if err != nil {
				return err
			}
			if preview.Count > 0 && !force {
				more := ""
				if preview.Count > len(preview.Sample) {
					more = ", ..."
				}
				return fmt.Errorf("%s has %d children (%s%s); use --force to delete and orphan them",
					args[0], preview.Count, strings.Join(preview.Sample, ", "), more)
			}
			imp, err := eng.DeleteRequirement(p, loc.Subsystem, args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), imp)
			}
			printImpact(cmd.OutOrStdout(), "Deleted "+args[0], imp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete even when the requirement has children")
	return cmd
}

func newReqMoveCmd(a *app, project *string) *cobra.Command {
	return &cobra.Command{
		Use:       "move <id> up|down",
		Short:     "Move a requirement one place within its subsystem",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir types.Direction
			switch strings.ToLower(args[1]) {
			case "up":
				dir = types.Up
			case "down":
				dir = types.Down
			default:
				return &types.ValidationError{Field: "direction", Value: args[1], Reason: types.ErrUnknownLabel}
			}
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			loc, err := eng.GetRequirement(p, args[0])
			if err != nil {
				return err
			}
			if err := eng.Reorder(p, loc.Subsystem, args[0], dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %s\n", args[0], strings.ToLower(args[1]))
			return nil
		},
	}
}

func newReqListCmd(a *app, project *string) *cobra.Command {
	var subsystem, text, typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requirements in subsystem order",
		Long: `List the requirements of one subsystem, or of every subsystem in
display order. --text and --type narrow the list the same way search
does. Rows marked * need review.

Example:
  satreq req list -s EPS --text battery --type Performance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			f, err := parseFilter(text, typ)
			if err != nil {
				return err
			}
			names := []string{subsystem}
			if subsystem == "" {
				proj := eng.Snapshot().Project(p)
				if proj == nil {
					return fmt.Errorf("%w: %q", types.ErrProjectNotFound, p)
				}
				names = types.DisplayOrder(proj)
			}
			rows := []types.Located{}
			for _, name := range names {
				reqs, err := eng.FilterRequirements(p, name, f)
				if err != nil {
					return err
				}
				rows = append(rows, locate(name, reqs)...)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			return requirementRows(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVarP(&subsystem, "subsystem", "s", "", "only this subsystem")
	cmd.Flags().StringVar(&text, "text", "", "only requirements containing this text")
	cmd.Flags().StringVar(&typ, "type", "", "only this type (All for every type)")
	return cmd
}

func newReqShowCmd(a *app, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a requirement with full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			loc, err := eng.GetRequirement(p, args[0])
			if err != nil {
				return err
			}
			children, err := eng.FindChildren(p, args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"subsystem":   loc.Subsystem,
					"requirement": loc.Requirement,
					"children":    childIDs(children),
				})
			}

			r := loc.Requirement
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:            %s\n", r.ID)
			fmt.Fprintf(w, "Subsystem:     %s\n", loc.Subsystem)
			fmt.Fprintf(w, "Type:          %s\n", r.Type)
			fmt.Fprintf(w, "Status:        %s\n", r.Status)
			fmt.Fprintf(w, "Method:        %s\n", r.Method)
			fmt.Fprintf(w, "Parent:        %s\n", dash(r.ParentID))
			fmt.Fprintf(w, "Target:        %s\n", dash(strings.TrimSpace(r.Value+" "+r.Unit)))
			fmt.Fprintf(w, "Last modified: %s\n", formatTime(r.LastModified))
			if r.NeedsReview {
				fmt.Fprintln(w, "Needs review:  yes")
			}
			fmt.Fprintf(w, "\n%s\n", textnorm.ToPlainText(r.Description))
			if len(children) > 0 {
				fmt.Fprintf(w, "\nChildren: %s\n", strings.Join(childIDs(children), ", "))
			}
			return nil
		},
	}
}

func newReqChildrenCmd(a *app, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "children <id>",
		Short: "List the direct children of a requirement across subsystems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			children, err := eng.FindChildren(p, args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), children)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tSUBSYSTEM\tSTATUS\tLAST MODIFIED\tDESCRIPTION")
			for _, c := range children {
				r := c.Requirement
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, c.Subsystem, r.Status, formatTime(r.LastModified), summary(r.Description))
			}
			return tw.Flush()
		},
	}
}

func newReqNextIDCmd(a *app, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Propose the next free requirement id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(*project)
			if err != nil {
				return err
			}
			id, err := eng.ProposeNextID(p)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func childIDs(children []types.Located) []string {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.Requirement.ID
	}
	return ids
}
