// Package mockapi is an in-memory implementation of the console REST backend.
// It backs `mbkm mock-server` for local demos and the HTTP tests of the client
// packages.
package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"mbkm-console/internal/model"
)

type Options struct {
	// Seed fills the store with demo data.
	Seed bool
	// RequestsPerMinute enables per-IP rate limiting when > 0.
	RequestsPerMinute int
	// Latency delays every response (useful to watch loading states in the TUI).
	Latency time.Duration
	Logger  *slog.Logger
}

type Server struct {
	mu   sync.Mutex
	opts Options
	log  *slog.Logger

	registrants *collection[model.Registrant]
	programs    *collection[model.Program]
	places      *collection[model.Place]
	settings    *collection[model.Setting]
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{opts: opts, log: log.With("component", "mockapi")}
	s.registrants = registrantCollection()
	s.programs = programCollection()
	s.places = placeCollection()
	s.settings = settingCollection()
	s.settings.routes = func(r chi.Router) { r.Get("/current", s.handleCurrentSetting) }
	s.places.routes = func(r chi.Router) { r.Post("/{id}/logo", s.handlePlaceLogo) }
	if opts.Seed {
		s.seed()
	}
	return s
}

// Handler serves the API under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	if s.opts.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.opts.RequestsPerMinute, time.Minute))
	}
	if s.opts.Latency > 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				select {
				case <-time.After(s.opts.Latency):
				case <-req.Context().Done():
					return
				}
				next.ServeHTTP(w, req)
			})
		})
	}

	r.Route("/api", func(r chi.Router) {
		mount(r, s, s.registrants)
		mount(r, s, s.programs)
		mount(r, s, s.places)
		mount(r, s, s.settings)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "endpoint not found", nil)
	})
	return r
}

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       any                 `json:"data"`
	Pagination *model.Pagination   `json:"pagination,omitempty"`
	Statistics model.Statistics    `json:"statistics,omitempty"`
	Filters    map[string]string   `json:"filters,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func ok(w http.ResponseWriter, msg string, data any) {
	respond(w, http.StatusOK, envelope{Success: true, Message: msg, Data: data})
}

func fail(w http.ResponseWriter, status int, msg string, errs map[string][]string) {
	respond(w, status, envelope{Success: false, Message: msg, Errors: errs})
}

func failValidation(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		fail(w, http.StatusUnprocessableEntity, "Validation failed", map[string][]string{verr.Field: {verr.Error()}})
		return
	}
	fail(w, http.StatusBadRequest, err.Error(), nil)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// filterValue returns the trimmed query value, treating "all" as unset.
func filterValue(q url.Values, key string) string {
	v := strings.TrimSpace(q.Get(key))
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortedByID[T any](items []T, id func(T) int) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return id(out[i]) > id(out[j]) })
	return out
}

func (s *Server) handleCurrentSetting(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.settings.items {
		if st.IsActive {
			ok(w, "Active setting", st)
			return
		}
	}
	ok(w, "No active setting", nil)
}

func (s *Server) handlePlaceLogo(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		fail(w, http.StatusBadRequest, "invalid multipart body", nil)
		return
	}
	f, hdr, err := r.FormFile("logo")
	if err != nil {
		fail(w, http.StatusUnprocessableEntity, "Validation failed", map[string][]string{"logo": {"logo file is required"}})
		return
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		fail(w, http.StatusBadRequest, "could not read upload", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.places.find(id)
	if p == nil || p.DeletedAt != nil {
		fail(w, http.StatusNotFound, "Place not found", nil)
		return
	}
	p.LogoURL = "/uploads/places/" + model.IDString(id) + "/" + hdr.Filename
	ok(w, "Logo uploaded", *p)
}
