package cli

import (
	"fmt"

	"github.com/alexanderramin/scopesync/internal/config"
	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/sandbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds the configuration and collaborators shared by all commands.
type App struct {
	Config config.Config

	// Remote is opened from Config.SandboxDB on first use when nil.
	Remote *sandbox.Remote

	// Observer overrides the observer chosen from Config.LogCalls.
	Observer mirror.Observer

	// IsInteractive reports whether confirmation prompts can be shown.
	IsInteractive func() bool

	// Confirm replaces the interactive prompt, mainly for tests.
	Confirm func(title string) (bool, error)

	closeDB func() error
}

// NewRootCmd creates the top-level "scopesync" command and registers all
// subcommands against the provided App. Persistent flags default to the
// environment-derived configuration, so flags win over env vars.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "scopesync",
		Short:         "Mirror and edit courses, rosters, outlines and extensions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !app.Config.Metrics {
				return nil
			}
			return writeMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
		},
	}

	bindConfigFlags(root.PersistentFlags(), &app.Config)

	root.AddCommand(
		newSandboxCmd(app),
		newCourseCmd(app),
		newPeopleCmd(app),
		newAssignmentCmd(app),
		newQuestionCmd(app),
		newExtensionCmd(app),
	)
	return root
}

// bindConfigFlags registers one flag per Config field, defaulting to the
// value already loaded from the environment.
func bindConfigFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.SandboxDB, "db", cfg.SandboxDB, "Sandbox database path")
	fs.StringVar(&cfg.AccountEmail, "email", cfg.AccountEmail, "Account email")
	fs.BoolVarP(&cfg.AssumeYes, "yes", "y", cfg.AssumeYes, "Skip confirmation prompts")
	fs.BoolVar(&cfg.LogCalls, "log-calls", cfg.LogCalls, "Log every remote call and reload to stderr")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "Print mirror metrics to stderr when the command exits")
	fs.IntVar(&cfg.ExportPollMs, "export-poll-ms", cfg.ExportPollMs, "Delay between export status polls")
	fs.IntVar(&cfg.ExportTimeoutMs, "export-timeout-ms", cfg.ExportTimeoutMs, "Export deadline (0 waits indefinitely)")
}

// Close releases the sandbox database if the App opened it.
func (a *App) Close() error {
	if a.closeDB == nil {
		return nil
	}
	err := a.closeDB()
	a.closeDB = nil
	return err
}

func (a *App) remote() (*sandbox.Remote, error) {
	if a.Remote != nil {
		return a.Remote, nil
	}
	database, err := db.OpenDB(a.Config.SandboxDB)
	if err != nil {
		return nil, err
	}
	a.Remote = sandbox.New(database)
	a.closeDB = database.Close
	return a.Remote, nil
}

func (a *App) observer(cmd *cobra.Command) mirror.Observer {
	if a.Observer != nil {
		return a.Observer
	}
	if a.Config.LogCalls {
		return mirror.NewLogObserver(cmd.ErrOrStderr())
	}
	return mirror.NoopObserver{}
}

// account opens a session for the configured email and loads its courses.
func (a *App) account(cmd *cobra.Command) (*mirror.Account, error) {
	remote, err := a.remote()
	if err != nil {
		return nil, err
	}
	sess := mirror.NewSession(a.Config.AccountEmail, remote, mirror.WithObserver(a.observer(cmd)))
	acct := mirror.NewAccount(sess)
	if err := acct.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("loading courses: %w", err)
	}
	return acct, nil
}

func (a *App) exportOptions(onProgress func(mirror.ExportStatus)) mirror.ExportOptions {
	return mirror.ExportOptions{
		Interval:   a.Config.ExportPollInterval(),
		Timeout:    a.Config.ExportTimeout(),
		OnProgress: onProgress,
	}
}
