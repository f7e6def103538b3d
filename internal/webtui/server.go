package webtui

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

type ServerConfig struct {
	Addr string
	// APIURL, APIToken and ConfigDir are handed to every console subprocess.
	APIURL    string
	APIToken  string
	ConfigDir string
	// Executable is the console binary; defaults to the running one.
	Executable string
	// Secret signs login and session tokens; loaded from ConfigDir when empty.
	Secret []byte
	// NoAuth serves the terminal without a session cookie.
	NoAuth bool
	Logger *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	log    *slog.Logger
	secret []byte
	now    func() time.Time
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("webtui: missing addr")
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	secret := cfg.Secret
	if len(secret) == 0 && !cfg.NoAuth {
		if secret, err = loadOrInitSecretKey(cfg.ConfigDir); err != nil {
			return nil, err
		}
	}
	return &Server{
		cfg:    cfg,
		tmpl:   tmpl,
		log:    log.With("component", "webtui"),
		secret: secret,
		now:    time.Now,
	}, nil
}

func (s *Server) Addr() string {
	return strings.TrimSpace(s.cfg.Addr)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "same-origin",
		IsDevelopment:      true,
	}).Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/terminal", http.StatusFound)
	})
	r.Get("/login", s.handleLogin)
	r.Get("/docs", s.handleDocs)
	r.Get("/docs/{topic}", s.handleDocs)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/terminal", s.handleTerminal)
		r.Get("/ws", s.handleWS)
	})

	r.Get("/static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	r.Get("/static/app.js", s.handleStatic("static/app.js", "text/javascript; charset=utf-8"))

	return r
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

type terminalVM struct {
	APIURL    string
	ConfigDir string
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	vm := terminalVM{
		APIURL:    strings.TrimSpace(s.cfg.APIURL),
		ConfigDir: strings.TrimSpace(s.cfg.ConfigDir),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "terminal.html", vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Server) executable() (string, error) {
	if exe := strings.TrimSpace(s.cfg.Executable); exe != "" {
		return exe, nil
	}
	return os.Executable()
}
