package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/internal/paths"
	"github.com/mesh-intelligence/satreq/internal/persist"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the data file",
		Long: "Create the configuration directory and config.yaml, then create an\n" +
			"empty data file if none exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, prefix)
		},
	}
	cmd.Flags().StringVar(&prefix, "id-prefix", types.DefaultIDPrefix, "prefix of proposed requirement ids")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, prefix string) error {
	if err := (types.Config{DataFile: "-", IDPrefix: prefix}).Validate(); err != nil {
		return err
	}
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	var dataFile string
	if a.flags.dataFile != "" {
		if dataFile, err = filepath.Abs(a.flags.dataFile); err != nil {
			return sysError("resolve data file: %w", err)
		}
	}
	cfg := configFile{DataFile: dataFile, IDPrefix: prefix, LogLevel: defaultLogLevel}
	if err := writeConfigIfMissing(filepath.Join(dir, configFileExt), cfg); err != nil {
		return sysError("write config: %w", err)
	}
	if err := a.setup(cmd); err != nil {
		return err
	}

	eng, err := a.engine()
	if err != nil {
		return err
	}
	if _, err := os.Stat(a.dataFile); errors.Is(err, os.ErrNotExist) {
		if err := eng.Save(); err != nil {
			return err
		}
		a.logger.Info("created data file", zap.String("path", a.dataFile))
	}

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{"config_dir": dir, "data_file": a.dataFile})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "SatReq initialized\nconfig: %s\ndata:   %s\n", dir, a.dataFile)
	return nil
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Open a data file and remember it for later sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return sysError("resolve %s: %w", args[0], err)
			}
			if !persist.NewFile(path).Exists() {
				return fmt.Errorf("%s: %w", path, os.ErrNotExist)
			}
			eng, err := a.openFile(path)
			if err != nil {
				return err
			}
			if err := persist.WriteRecent(a.configDir, persist.Recent{LastDBPath: path}); err != nil {
				return sysError("record last opened file: %w", err)
			}

			names := eng.ListProjects()
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"data_file": path, "projects": names})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s (%d projects)\n", path, len(names))
			return nil
		},
	}
}
