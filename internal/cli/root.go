package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/config"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/scan"
	"github.com/toyz/classinfo/internal/utils"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App holds what every command needs once flags and configuration are resolved
type App struct {
	v      *viper.Viper
	cfg    *config.Config
	diag   *utils.DiagnosticSystem
	logger *zap.Logger
	out    io.Writer
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	app := &App{v: config.New(), diag: utils.NewQuietDiagnostics(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "classinfo",
		Short: "Inspect the methods of compiled JVM classes",
		Long: color.CyanString(`classinfo - JVM method metadata browser

Reads .class files and jars from a classpath and shows each method's
modifiers, annotations, generic signature and parameters, resolving
parameter, result and exception types through a scan-local classloader.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", ".", "Directory containing classinfo.yaml")
	flags.BoolP("verbose", "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "Only show errors and results")
	flags.Int("workers", 0, "Number of files parsed concurrently")
	flags.Bool("no-jars", false, "Skip .jar files on the classpath")
	flags.String("log-level", "", "Structured log level (debug, info, warn, error)")

	// bound flags override classinfo.yaml and CLASSINFO_* only when set
	_ = app.v.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = app.v.BindPFlag("output.quiet", flags.Lookup("quiet"))
	_ = app.v.BindPFlag("scan.workers", flags.Lookup("workers"))
	_ = app.v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewListCommand(app))
	rootCmd.AddCommand(NewShowCommand(app))
	rootCmd.AddCommand(NewResolveCommand(app))
	rootCmd.AddCommand(NewServeCommand(app))

	return rootCmd
}

// Execute runs the command tree and reports a failure through the
// diagnostics. It returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	diag := utils.NewDiagnosticSystem(utils.DiagnosticError)
	if cmd.ErrOrStderr() != os.Stderr {
		diag.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	diag.ReportError(err)
	return 1
}

func (a *App) init(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if noJars, _ := flags.GetBool("no-jars"); noJars {
		a.v.Set("scan.include_jars", false)
	}
	dir, _ := flags.GetString("config-dir")

	cfg, err := config.Load(a.v, dir)
	if err != nil {
		return utils.WrapLoadError("configuration", err)
	}
	a.cfg = cfg

	level := utils.DiagnosticInfo
	switch {
	case cfg.Output.Quiet:
		level = utils.DiagnosticError
	case cfg.Output.Verbose:
		level = utils.DiagnosticVerbose
	}
	a.diag = utils.NewDiagnosticSystem(level)
	a.out = cmd.OutOrStdout()
	if a.out != os.Stdout {
		a.diag.SetOutput(a.out, cmd.ErrOrStderr())
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return errors.WrapConfigurationError("log.level", "build logger", err)
	}
	a.logger = logger
	return nil
}

// newLogger builds a console zap logger writing to stderr
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// scan reads paths, or the configured classpath when none are given.
// Per-file failures are reported as warnings and do not fail the command.
func (a *App) scan(ctx context.Context, paths []string) (*scan.Result, error) {
	roots := paths
	if len(roots) == 0 {
		roots = a.cfg.Classpath
	}
	a.diag.Verbose("Scanning %s", strings.Join(roots, ", "))

	s := scan.NewScanner(
		scan.WithWorkers(a.cfg.Scan.Workers),
		scan.WithJars(a.cfg.Scan.IncludeJars),
		scan.WithLogger(a.logger),
		scan.WithLoaderOptions(
			classloader.WithCacheSize(a.cfg.Loader.CacheSize),
			classloader.WithBootstrap(a.cfg.Loader.Bootstrap...),
		),
	)
	res, err := s.Scan(ctx, roots)
	if err != nil {
		return nil, err
	}

	var multi *errors.MultipleErrors
	if stderrors.As(res.Errors(), &multi) {
		a.diag.Warn("%d problem(s) while reading the classpath", multi.Count())
		a.diag.Indent()
		a.diag.ReportError(multi)
		a.diag.Unindent()
	}
	a.diag.Verbose("Scan %s read %d file(s), %d class(es), %d method(s)",
		res.ID, res.Files(), len(res.Classes()), len(res.Methods()))
	return res, nil
}
