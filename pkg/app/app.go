package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"

	"github.com/autopeer-io/vfleet/pkg/log"
)

// App is the main structure of a cli application.
type App struct {
	name        string
	shortDesc   string
	description string
	run         RunFunc
	cmd         *cobra.Command
	args        cobra.PositionalArgs
	subCommands []*cobra.Command

	options    NamedFlagSetOptions
	logOptions func() *log.Options

	configFile string
	viper      *viper.Viper
	watch      bool
}

// Option defines optional parameters for initializing the application structure.
type Option func(*App)

// RunFunc defines the application's startup callback function.
type RunFunc func() error

// WithOptions to open the application's function to read from the command line
// or read parameters from the configuration file.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc is used to set the application startup callback function option.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.run = run
	}
}

// WithDescription is used to set the description of the application.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithLogOptions tells the application where the logger settings live so it
// can initialize the global logger before running.
func WithLogOptions(fn func() *log.Options) Option {
	return func(a *App) {
		a.logOptions = fn
	}
}

// WithWatchConfig logs changes to the configuration file while running.
func WithWatchConfig() Option {
	return func(a *App) {
		a.watch = true
	}
}

// WithValidArgs set the validation function to valid non-flag arguments.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(a *App) {
		a.args = args
	}
}

// WithDefaultValidArgs set default validation function to valid non-flag arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}

			return nil
		}
	}
}

// WithSubCommands attaches child commands. They inherit the application's
// flags and run after its options were loaded and validated.
func WithSubCommands(cmds ...*cobra.Command) Option {
	return func(a *App) {
		a.subCommands = append(a.subCommands, cmds...)
	}
}

// NewApp creates a new application instance based on the given application name,
// short description, and options.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		viper:     viper.New(),
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()

	return a
}

// Command returns the cobra command backing the application.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run is used to launch the application.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:   a.name,
		Short: a.shortDesc,
		Long:  a.description,
		// stop printing usage when the command errors
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	if a.run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return a.run()
		}
	}

	var fss cliflag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}
	a.addConfigFlag(fss.FlagSet("global"))
	fs := cmd.PersistentFlags()
	for _, name := range fss.Order {
		fs.AddFlagSet(fss.FlagSets[name])
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.prepare(cmd)
	}

	for _, sub := range a.subCommands {
		cmd.AddCommand(sub)
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, fss, cols)

	a.cmd = cmd
}

// prepare loads .env, config file and environment, then completes and
// validates the options and initializes logging.
func (a *App) prepare(cmd *cobra.Command) error {
	if err := loadEnv(); err != nil {
		return err
	}

	if err := a.viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := a.readConfig(); err != nil {
		return err
	}

	if a.options != nil {
		if err := a.viper.Unmarshal(a.options); err != nil {
			return fmt.Errorf("failed to unmarshal configuration: %w", err)
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.logOptions != nil {
		log.Init(a.logOptions())
	}

	if a.watch {
		a.watchConfig()
	}

	return nil
}
