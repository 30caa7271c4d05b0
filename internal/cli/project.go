package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, rename, delete and list projects",
	}

	var subsystems []string
	var empty bool
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Long: `Create a project seeded with the standard subsystems
(Mission, Payload, AOCS, EPS, TCS, COMMS, OBDH, Structure), the
subsystems named by --subsystem, or none with --empty.

Example:
  satreq project create Sentinel-6
  satreq project create CubeSat --subsystem Payload
  satreq project create Draft --empty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			seed := types.StandardSubsystems
			switch {
			case empty:
				seed = nil
			case len(subsystems) > 0:
				seed = subsystems
			}
			if err := eng.CreateProject(args[0], seed); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"project": args[0], "subsystems": seed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%d subsystems)\n", args[0], len(seed))
			return nil
		},
	}
	create.Flags().StringSliceVar(&subsystems, "subsystem", nil, "initial subsystem (repeatable)")
	create.Flags().BoolVar(&empty, "empty", false, "create without subsystems")
	create.MarkFlagsMutuallyExclusive("subsystem", "empty")

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			if err := eng.RenameProject(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed project %s to %s\n", args[0], args[1])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and all of its requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			if err := eng.DeleteProject(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			names := eng.ListProjects()
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), names)
			}
			snap := eng.Snapshot()
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PROJECT\tSUBSYSTEMS\tREQUIREMENTS")
			for _, name := range names {
				p := snap.Project(name)
				fmt.Fprintf(tw, "%s\t%d\t%d\n", name, len(p.Subsystems), p.Len())
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(create, rename, del, list)
	return cmd
}

func newSubsystemCmd(a *app) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "subsystem",
		Short: "Add, rename, delete and list the subsystems of a project",
	}
	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project name (default: the only project)")

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a subsystem",
		Long: "Add a subsystem to a project. Common names: " + fmt.Sprint(types.SubsystemChoices),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			if err := eng.AddSubsystem(p, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added subsystem %s to %s\n", args[0], p)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a subsystem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			if err := eng.RenameSubsystem(p, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed subsystem %s to %s\n", args[0], args[1])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a subsystem and its requirements",
		Long: "Delete a subsystem and its requirements. Requirements elsewhere in\n" +
			"the project that pointed at a deleted requirement lose their parent\n" +
			"and are flagged for review.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			imp, err := eng.DeleteSubsystem(p, args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), imp)
			}
			printImpact(cmd.OutOrStdout(), "Deleted subsystem "+args[0], imp)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the subsystems of a project in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, p, err := a.engineProject(project)
			if err != nil {
				return err
			}
			proj := eng.Snapshot().Project(p)
			if proj == nil {
				return fmt.Errorf("%w: %q", types.ErrProjectNotFound, p)
			}
			names := types.DisplayOrder(proj)
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), names)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SUBSYSTEM\tREQUIREMENTS")
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t%d\n", name, len(proj.Subsystem(name).Requirements))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, rename, del, list)
	return cmd
}

// engineProject opens the engine and resolves the --project flag.
func (a *app) engineProject(flag string) (types.Engine, string, error) {
	eng, err := a.engine()
	if err != nil {
		return nil, "", err
	}
	p, err := projectName(eng, flag)
	if err != nil {
		return nil, "", err
	}
	return eng, p, nil
}
