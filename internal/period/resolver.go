// Package period resolves the academic period the console works in.
package period

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"mbkm-console/internal/model"
)

// Fallback is used when neither the current setting nor the filter options yield a period.
var Fallback = model.ActivePeriod{AcademicYear: "2025/2026", Semester: model.SemesterGanjil}

type Source string

const (
	SourceSetting       Source = "setting"
	SourceFilterOptions Source = "filter-options"
	SourceFallback      Source = "fallback"
)

type Resolution struct {
	Period model.ActivePeriod
	Source Source
}

// CurrentSetting returns the active setting, or nil when none is active.
type CurrentSetting interface {
	CurrentSetting(ctx context.Context) (*model.Setting, error)
}

type OptionsSource interface {
	FilterOptions(ctx context.Context) (model.FilterOptions, error)
}

// Resolver runs the fallback chain once per process. Concurrent callers share
// the in-flight resolution; the result is cached afterwards.
type Resolver struct {
	settings CurrentSetting
	options  OptionsSource
	log      *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	resolved *Resolution
}

func NewResolver(settings CurrentSetting, options OptionsSource, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{settings: settings, options: options, log: log.With("component", "period")}
}

// Resolve never fails: every step error is logged and treated as "no result".
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	if res, ok := r.Current(); ok {
		return res
	}
	v, _, _ := r.group.Do("resolve", func() (any, error) {
		if res, ok := r.Current(); ok {
			return res, nil
		}
		res := r.resolve(ctx)
		r.mu.Lock()
		r.resolved = &res
		r.mu.Unlock()
		r.log.Info("period resolved", "period", res.Period.String(), "source", res.Source)
		return res, nil
	})
	return v.(Resolution)
}

func (r *Resolver) Initialized() bool {
	_, ok := r.Current()
	return ok
}

// Current returns the cached resolution, if any.
func (r *Resolver) Current() (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved == nil {
		return Resolution{}, false
	}
	return *r.resolved, true
}

func (r *Resolver) resolve(ctx context.Context) Resolution {
	if r.settings != nil {
		st, err := r.settings.CurrentSetting(ctx)
		switch {
		case err != nil:
			r.log.Debug("current setting unavailable", "error", err)
		case st != nil && strings.TrimSpace(st.AcademicYear) != "":
			p := st.Period()
			if !p.Semester.Valid() {
				p.Semester = model.SemesterGanjil
			}
			return Resolution{Period: p, Source: SourceSetting}
		}
	}
	if r.options != nil {
		opts, err := r.options.FilterOptions(ctx)
		if err != nil {
			r.log.Debug("filter options unavailable", "error", err)
		} else if years := opts.Values("academic_years"); len(years) > 0 {
			return Resolution{
				Period: model.ActivePeriod{AcademicYear: years[0], Semester: model.SemesterGanjil},
				Source: SourceFilterOptions,
			}
		}
	}
	return Resolution{Period: Fallback, Source: SourceFallback}
}
