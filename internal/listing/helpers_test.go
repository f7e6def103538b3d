package listing

import (
	"context"
	"net/url"
	"sync"
	"time"

	"mbkm-console/internal/api"
	"mbkm-console/internal/model"
)

type row struct {
	ID     int
	Name   string
	Active bool
}

func (r row) EntityID() int       { return r.ID }
func (r row) DisplayName() string { return r.Name }

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{ID: i + 1, Name: "Row " + model.IDString(i+1)}
	}
	return out
}

type fakeSource struct {
	mu    sync.Mutex
	calls []url.Values
	list  func(ctx context.Context, q url.Values) (api.Page[row], error)
}

func newFakeSource(items []row, total int) *fakeSource {
	return &fakeSource{list: func(_ context.Context, q url.Values) (api.Page[row], error) {
		return api.Page[row]{
			Items:      items,
			Pagination: model.Pagination{CurrentPage: 1, PerPage: 15, Total: total},
			Statistics: model.Statistics{"total": total},
		}, nil
	}}
}

func (f *fakeSource) List(ctx context.Context, q url.Values) (api.Page[row], error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	fn := f.list
	f.mu.Unlock()
	return fn(ctx, q)
}

func (f *fakeSource) setList(fn func(ctx context.Context, q url.Values) (api.Page[row], error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = fn
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type noticeLog struct {
	mu   sync.Mutex
	list []Notice
}

func (n *noticeLog) Notify(x Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, x)
}

func (n *noticeLog) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.list...)
}

func (n *noticeLog) lastText() string {
	all := n.all()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1].Text
}

// fakeClock is a manual AfterFunc for debounce tests.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
