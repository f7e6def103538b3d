package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mbkm-console/internal/api"
	"mbkm-console/internal/config"
	"mbkm-console/internal/console"
	"mbkm-console/internal/format"
	"mbkm-console/internal/period"
	"mbkm-console/internal/store"
	"mbkm-console/internal/tui"
)

type App struct {
	APIURL     string
	Token      string
	ConfigDir  string
	ExportDir  string
	PrettyJSON bool
	Format     string
	Log        bool
	LogFile    string

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mbkm",
		Short:        "MBKM placement admin console (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  mbkm

  # Scriptable commands
  mbkm list registrants --status pending
  mbkm review 12 --status approved

  # Shortcut for: mbkm list places
  mbkm places --format table
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			return app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides MBKM_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token (overrides MBKM_API_TOKEN)")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", "", "Local state directory (overrides MBKM_CONFIG_DIR)")
	cmd.PersistentFlags().StringVar(&app.ExportDir, "export-dir", "", "Directory CSV exports are written to (overrides MBKM_EXPORT_DIR)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MBKM_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.Log, "log", false, "Write a debug log (overrides MBKM_LOG)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file path; implies --log (overrides MBKM_LOG_FILE)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newCreateCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newUploadLogoCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newExportsCmd(app))
	cmd.AddCommand(newPeriodCmd(app))
	cmd.AddCommand(newWebTUICmd(app))
	cmd.AddCommand(newMockServerCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// load reads MBKM_* settings, then applies explicit flags on top.
func (app *App) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(app.Token); v != "" {
		cfg.APIToken = v
	}
	if v := strings.TrimSpace(app.ConfigDir); v != "" {
		cfg.ConfigDir = v
	}
	if v := strings.TrimSpace(app.ExportDir); v != "" {
		cfg.ExportDir = v
	}
	if v := strings.TrimSpace(app.LogFile); v != "" {
		cfg.LogFile = v
		cfg.LogEnabled = true
	}
	if app.Log {
		cfg.LogEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, closer, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log = log
	app.logCloser = closer
	return nil
}

func (app *App) client() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: app.cfg.APIURL,
		Timeout: app.cfg.APITimeout,
		Token:   app.cfg.APIToken,
		Logger:  app.log,
	})
}

func (app *App) openStore(ctx context.Context) (*store.DB, error) {
	dir, err := app.cfg.Dir()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, dir)
}

func (app *App) resolver(c *api.Client) *period.Resolver {
	return period.NewResolver(c, c.Registrants(), app.log)
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	db, err := app.openStore(ctx)
	if err != nil {
		// View prefs and export history are optional.
		app.log.Warn("local state unavailable", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	bridge := tui.NewBridge()
	sess := console.New(console.Options{
		Client:      client,
		Store:       db,
		Notifier:    bridge,
		Logger:      app.log,
		PerPage:     app.cfg.PerPage,
		SearchDelay: app.cfg.SearchDebounce,
		ExportDir:   app.cfg.ExportPath(),
	})
	return tui.Run(ctx, sess, bridge, tui.Options{ExportDir: app.cfg.ExportPath(), Store: db})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, err.Error()))
	return err
}
