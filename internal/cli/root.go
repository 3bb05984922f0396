// Package cli implements the pantry command-line interface.
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

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/internal/report"
	"github.com/mesh-intelligence/pantry/pkg/types"
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
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by one invocation of the command tree.
type app struct {
	flags  rootFlags
	stdout io.Writer
	stderr io.Writer

	clock    types.Clock
	logger   *zap.Logger
	ownsLog  bool
	reporter types.Reporter

	configDir string
	v         *viper.Viper
	location  *time.Location
	lifecycle *types.Lifecycle
}

// Option customizes an invocation, mainly for tests.
type Option func(*app)

// WithClock replaces the system clock.
func WithClock(clock types.Clock) Option {
	return func(a *app) { a.clock = clock }
}

// WithLogger uses logger instead of building one from --log-level.
func WithLogger(logger *zap.Logger) Option {
	return func(a *app) { a.logger = logger }
}

// Execute runs the command tree against the process arguments and exits
// with the resulting code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the pantry command tree with args and returns the exit code.
// Errors are printed to stderr; system errors are also reported to the log.
func Run(args []string, stdout, stderr io.Writer, opts ...Option) int {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		clock:  types.SystemClock{},
	}
	for _, opt := range opts {
		opt(a)
	}

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	code := exitCode(err)
	if err != nil {
		fmt.Fprintln(stderr, "pantry:", err)
		if code == exitSysError {
			a.report(err)
		}
	}
	a.closeLogger()
	return code
}

// exitCode maps an error to a process exit code. Missing items and
// validation failures are the user's to fix; everything else is a system
// error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrNotFound):
		return exitUserError
	case types.Classify(err) == types.KindValidation:
		return exitUserError
	default:
		return exitSysError
	}
}

// newRootCmd creates the top-level "pantry" command with global flags and
// all subcommands registered.
func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pantry",
		Short: "Track perishable food from purchase to the bin",
		Long: `Pantry tracks household perishables: when they expire, where they are
kept, whether they have been opened and how much is left. Opening an item
shortens its shelf life according to its category.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $PANTRY_CONFIG_DIR or the platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.pantry-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.newInitCmd(),
		a.newAddCmd(),
		a.newListCmd(),
		a.newShowCmd(),
		a.newOpenCmd(),
		a.newUnopenCmd(),
		a.newConsumeCmd(),
		a.newEditCmd(),
		a.newDeleteCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger, reporter and lifecycle
// before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Skip setup for version command
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return dataError("resolve config dir", err)
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.v = v

	if a.logger == nil {
		level := a.flags.logLevel
		if level == "" {
			level = v.GetString(cfgKeyLogLevel)
		}
		logger, err := report.NewLogger(level)
		if err != nil {
			return usageError(err)
		}
		a.logger = logger
		a.ownsLog = true
	}
	a.reporter = report.NewZapReporter(a.logger)

	loc, err := loadLocation(v.GetString(cfgKeyTimezone))
	if err != nil {
		return err
	}
	a.location = loc
	a.lifecycle = types.NewLifecycle(
		types.WithClock(types.ClockFunc(func() time.Time { return a.clock.Now().In(loc) })),
		types.WithCalendar(types.LocalCalendar{Location: loc}),
	)

	a.logger.Debug("configuration loaded",
		zap.String("config_dir", configDir),
		zap.String("timezone", loc.String()))
	return nil
}

// report sends a system error to the reporter. When setup failed before
// building one, the error is logged to stderr instead.
func (a *app) report(err error) {
	if a.reporter == nil {
		if a.logger == nil {
			logger, lerr := report.NewConsoleLogger(a.stderr, a.flags.logLevel)
			if lerr != nil {
				logger, _ = report.NewConsoleLogger(a.stderr, "")
			}
			a.logger = logger
			a.ownsLog = true
		}
		a.reporter = report.NewZapReporter(a.logger)
	}
	a.reporter.Report(err)
}

func (a *app) closeLogger() {
	if a.logger != nil && a.ownsLog {
		_ = a.logger.Sync()
	}
}

// loadLocation resolves the configured timezone; empty means the system zone.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, types.NewValidationError(fmt.Sprintf("unknown timezone %q", name), err)
	}
	return loc, nil
}

// usageError marks err as the caller's mistake.
func usageError(err error) error {
	return types.NewValidationError(err.Error(), err)
}

// usageArgs wraps a cobra argument validator so its failures count as user
// errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// dataError marks err as a storage or filesystem failure during op.
func dataError(op string, err error) error {
	return types.NewDataError(fmt.Sprintf("%s: %v", op, err), err)
}
