package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mbkm-console/internal/mockapi"
	"mbkm-console/internal/webtui"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string
	var noAuth bool

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the console TUI in your browser (PTY + WebSocket, experimental)",
		Long: strings.TrimSpace(`
Run the interactive console over the web via a server-side PTY and a browser terminal emulator.

Notes:
- The terminal needs a session; open the login link printed on start (valid for 15 minutes).
- Bind to localhost unless you trust the network.
- Each browser tab starts a console subprocess on the server with the same API settings.
`),
		Example: strings.TrimSpace(`
mbkm webtui --addr 127.0.0.1:3334
mbkm --api-url http://localhost:8080/api webtui
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.cfg.Dir()
			if err != nil {
				return writeErr(cmd, err)
			}
			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:      strings.TrimSpace(addr),
				APIURL:    app.cfg.APIURL,
				APIToken:  app.cfg.APIToken,
				ConfigDir: dir,
				NoAuth:    noAuth,
				Logger:    app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := srv.Addr()
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}
			login, err := srv.LoginURL()
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":      listenAddr,
					"api":       app.cfg.APIURL,
					"dir":       dir,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: []string{"open http://" + listenAddr + login},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "MBKM webtui running at http://%s%s (api=%s)\n", listenAddr, login, app.cfg.APIURL)
			return http.ListenAndServe(listenAddr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3334", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "Serve the terminal without a login link")
	return cmd
}

type mockServerFlags struct {
	addr    string
	seed    bool
	latency time.Duration
	rate    int
	verbose bool
}

func (f mockServerFlags) server() *mockapi.Server {
	var log *slog.Logger
	if f.verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return mockapi.New(mockapi.Options{
		Seed:              f.seed,
		Latency:           f.latency,
		RequestsPerMinute: f.rate,
		Logger:            log,
	})
}

func newMockServerCmd(app *App) *cobra.Command {
	var f mockServerFlags

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory backend with demo data under /api",
		Example: strings.TrimSpace(`
mbkm mock-server --addr 127.0.0.1:8080 --latency 300ms
MBKM_API_URL=http://127.0.0.1:8080/api mbkm
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := strings.TrimSpace(f.addr)
			if addr == "" {
				return writeErr(cmd, errors.New("mock-server: missing --addr"))
			}
			_ = writeOut(cmd, app, envelope{
				Data:  map[string]any{"addr": addr, "seed": f.seed, "latency": f.latency.String()},
				Hints: []string{"MBKM_API_URL=http://" + addr + "/api"},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "MBKM mock API listening on http://%s/api\n", addr)
			return http.ListenAndServe(addr, f.server().Handler())
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", "127.0.0.1:8080", "Bind address")
	cmd.Flags().BoolVar(&f.seed, "seed", true, "Load demo data")
	cmd.Flags().DurationVar(&f.latency, "latency", 0, "Artificial delay per request")
	cmd.Flags().IntVar(&f.rate, "rate", 0, "Requests per minute per IP (0 = unlimited)")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Log requests to stderr")
	return cmd
}
