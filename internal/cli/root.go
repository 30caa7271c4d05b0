// Package cli implements the satreq command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/satreq/internal/paths"
	"github.com/mesh-intelligence/satreq/internal/persist"
	"github.com/mesh-intelligence/satreq/pkg/reqstore"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataFile  string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	logger    *zap.Logger
	now       func() time.Time

	eng      types.Engine
	dataFile string
}

// NewRootCmd creates the top-level "satreq" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), now: time.Now}

	root := &cobra.Command{
		Use:   "satreq",
		Short: "Satellite requirements traceability",
		Long: "SatReq manages satellite engineering requirements organized by project\n" +
			"and subsystem, with parent links tracing each requirement to its source.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "init":
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataFile, "data-file", "", "requirements data file (default: last opened, else ./satreq.json)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newOpenCmd(a))
	root.AddCommand(newProjectCmd(a))
	root.AddCommand(newSubsystemCmd(a))
	root.AddCommand(newReqCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newTraceCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newExportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps err to a process exit code. Load and save failures are
// system errors; everything the user can fix is a user error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrLoad) || errors.Is(err, types.ErrSave) {
		return exitSysError
	}
	return exitUserError
}

// setup resolves the config directory, reads config.yaml and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return sysError("%w", err)
	}
	logger, err := newLogger(cfg.GetString(cfgKeyLogLevel), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.configDir, a.cfg, a.logger = dir, cfg, logger
	return nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", cfgKeyLogLevel, level, err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// resolveDataFile applies the data file precedence chain, consulting the
// record of the file opened last.
func (a *app) resolveDataFile() (string, error) {
	recent, err := persist.ReadRecent(a.configDir)
	if err != nil {
		a.logger.Warn("ignoring last-opened record", zap.Error(err))
	}
	return paths.ResolveDataFile(a.flags.dataFile, a.cfg.GetString(cfgKeyDataFile), recent.LastDBPath)
}

// engine opens the data file on first use.
func (a *app) engine() (types.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}
	path, err := a.resolveDataFile()
	if err != nil {
		return nil, sysError("resolve data file: %w", err)
	}
	eng, err := a.openFile(path)
	if err != nil {
		return nil, err
	}
	a.eng, a.dataFile = eng, path
	return eng, nil
}

func (a *app) openFile(path string) (types.Engine, error) {
	cfg := types.Config{
		DataFile:  path,
		IDPrefix:  a.cfg.GetString(cfgKeyIDPrefix),
		RecentDir: a.configDir,
	}
	return reqstore.Open(cfg, a.logger)
}

// projectName returns the --project value, or the only project when the
// flag is empty and exactly one exists.
func projectName(eng types.Engine, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	names := eng.ListProjects()
	if len(names) == 1 {
		return names[0], nil
	}
	return "", &types.ValidationError{Field: "project", Reason: errProjectRequired}
}

var errProjectRequired = errors.New("--project is required when the file holds zero or several projects")
