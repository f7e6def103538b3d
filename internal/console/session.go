// Package console wires one list view per resource over a shared API client,
// period resolver and notifier.
package console

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"mbkm-console/internal/api"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
	"mbkm-console/internal/period"
	"mbkm-console/internal/store"
)

// View is the full list stack of one resource.
type View[T listing.Entity] struct {
	Name       string
	Resource   *api.Resource[T]
	Params     *listing.Params
	Controller *listing.Controller[T]
	Actions    *listing.RowActions[T]
	Exporter   *listing.Exporter
}

// Export writes the rows matching the current filters into dir.
func (v *View[T]) Export(ctx context.Context, dir string) (string, int, error) {
	return v.Exporter.ExportToFile(ctx, v.Params.Snapshot(), dir)
}

type Options struct {
	Client *api.Client
	// Store is optional; without it view prefs and export history are not kept.
	Store    *store.DB
	Notifier listing.Notifier
	Logger   *slog.Logger

	PerPage     int
	SearchDelay time.Duration
	ExportDir   string

	// AfterFunc replaces the debounce timer (tests).
	AfterFunc listing.AfterFunc
}

type Session struct {
	client    *api.Client
	resolver  *period.Resolver
	store     *store.DB
	notify    listing.Notifier
	log       *slog.Logger
	exportDir string

	Registrants *View[model.Registrant]
	Programs    *View[model.Program]
	Places      *View[model.Place]
	Settings    *View[model.Setting]

	mu          sync.Mutex
	initialized bool
	resolution  period.Resolution
	closed      bool
}

func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		client:    opts.Client,
		store:     opts.Store,
		log:       log,
		exportDir: opts.ExportDir,
	}
	s.notify = listing.NotifierFunc(func(n listing.Notice) {
		s.log.Debug("notice", "level", n.Level.String(), "text", n.Text)
		if opts.Notifier != nil {
			opts.Notifier.Notify(n)
		}
	})
	s.resolver = period.NewResolver(opts.Client, opts.Client.Registrants(), log)

	s.Registrants = newView(s, opts, opts.Client.Registrants(), true)
	s.Programs = newView(s, opts, opts.Client.Programs(), true)
	s.Places = newView(s, opts, opts.Client.Places(), false)
	s.Settings = newView(s, opts, opts.Client.Settings(), false)
	return s
}

func newView[T listing.Entity](s *Session, opts Options, res *api.Resource[T], requirePeriod bool) *View[T] {
	params := listing.NewParams(listing.DefaultQueryParams(opts.PerPage))
	ctrl := listing.NewController(listing.Options[T]{
		Name:          res.Name(),
		Source:        res,
		Params:        params,
		Notifier:      s.notify,
		Logger:        s.log,
		SearchDelay:   opts.SearchDelay,
		AfterFunc:     opts.AfterFunc,
		RequirePeriod: requirePeriod,
	})
	var recorder listing.ExportRecorder
	if s.store != nil {
		recorder = s.store
	}
	return &View[T]{
		Name:       res.Name(),
		Resource:   res,
		Params:     params,
		Controller: ctrl,
		Actions:    listing.NewRowActions[T](ctrl, s.notify, s.log.With("view", res.Name())),
		Exporter: listing.NewExporter(listing.ExportOptions{
			Resource: res.Name(),
			Source:   res,
			Notifier: s.notify,
			Logger:   s.log,
			Recorder: recorder,
		}),
	}
}

func (s *Session) Client() *api.Client        { return s.client }
func (s *Session) Resolver() *period.Resolver { return s.resolver }
func (s *Session) ExportDir() string          { return s.exportDir }

// Init restores view prefs, starts every view, resolves the period and seeds
// the period-dependent views. It runs once; later calls return the cached
// resolution.
func (s *Session) Init(ctx context.Context) period.Resolution {
	s.mu.Lock()
	if s.initialized {
		res := s.resolution
		s.mu.Unlock()
		return res
	}
	s.mu.Unlock()

	s.restorePrefs(ctx)
	s.Registrants.Controller.Start(ctx)
	s.Programs.Controller.Start(ctx)
	s.Places.Controller.Start(ctx)
	s.Settings.Controller.Start(ctx)

	res := s.resolver.Resolve(ctx)
	s.Registrants.Params.Seed(res.Period)
	s.Programs.Params.Seed(res.Period)

	s.mu.Lock()
	s.initialized = true
	s.resolution = res
	s.mu.Unlock()
	return res
}

func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Period is the resolved period, or the fallback before Init.
func (s *Session) Period() model.ActivePeriod {
	if res, ok := s.resolver.Current(); ok {
		return res.Period
	}
	return period.Fallback
}

// Wait blocks until every background fetch issued so far has finished.
func (s *Session) Wait() {
	s.Registrants.Controller.Wait()
	s.Programs.Controller.Wait()
	s.Places.Controller.Wait()
	s.Settings.Controller.Wait()
}

// Close persists view prefs and stops every controller.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.savePrefs(context.Background())
	s.Registrants.Controller.Close()
	s.Programs.Controller.Close()
	s.Places.Controller.Close()
	s.Settings.Controller.Close()
}

func (s *Session) params() map[string]*listing.Params {
	return map[string]*listing.Params{
		s.Registrants.Name: s.Registrants.Params,
		s.Programs.Name:    s.Programs.Params,
		s.Places.Name:      s.Places.Params,
		s.Settings.Name:    s.Settings.Params,
	}
}

func (s *Session) restorePrefs(ctx context.Context) {
	if s.store == nil {
		return
	}
	for name, p := range s.params() {
		prefs, ok, err := s.store.ViewPrefs(ctx, name)
		if err != nil {
			s.log.Warn("view prefs unavailable", "view", name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		p.SetPerPage(prefs.PerPage)
		p.SetStatus(prefs.Status)
	}
}

func (s *Session) savePrefs(ctx context.Context) {
	if s.store == nil {
		return
	}
	for name, p := range s.params() {
		snap := p.Snapshot()
		if err := s.store.SaveViewPrefs(ctx, store.ViewPrefs{View: name, PerPage: snap.PerPage, Status: snap.Status}); err != nil {
			s.log.Warn("view prefs not saved", "view", name, "error", err)
		}
	}
}
