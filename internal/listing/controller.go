package listing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"mbkm-console/internal/api"
	"mbkm-console/internal/model"
)

// ErrNotReady is returned by Refresh while a period-dependent view is not seeded yet.
var ErrNotReady = errors.New("listing: period not resolved yet")

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Result is one committed page. It is replaced wholesale by every successful fetch.
type Result[T any] struct {
	Items      []T
	Pagination model.Pagination
	Statistics model.Statistics
}

// State is what a view renders. Result.Items must be treated as read-only.
type State[T any] struct {
	Phase      Phase
	Result     Result[T]
	HasResult  bool
	Loading    bool
	Refreshing bool
	Err        error
	Message    string
	Params     QueryParams
}

type Source[T any] interface {
	List(ctx context.Context, query url.Values) (api.Page[T], error)
}

type Options[T Entity] struct {
	Name     string
	Source   Source[T]
	Params   *Params
	Notifier Notifier
	Logger   *slog.Logger

	SearchDelay time.Duration
	AfterFunc   AfterFunc

	// RequirePeriod holds every fetch until Params has been seeded.
	RequirePeriod bool
}

// Controller is the single fetch subscriber of a Params. Each request carries
// a sequence number and only the latest issued request may commit.
type Controller[T Entity] struct {
	name          string
	src           Source[T]
	params        *Params
	notify        Notifier
	log           *slog.Logger
	requirePeriod bool
	debounce      *Debouncer

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	subs   []func(State[T])
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
}

func NewController[T Entity](opts Options[T]) *Controller[T] {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	params := opts.Params
	if params == nil {
		params = NewParams(DefaultQueryParams(DefaultPerPage))
	}
	c := &Controller[T]{
		name:          opts.Name,
		src:           opts.Source,
		params:        params,
		notify:        notifierOrDiscard(opts.Notifier),
		log:           log.With("view", opts.Name),
		requirePeriod: opts.RequirePeriod,
		debounce:      NewDebouncer(opts.SearchDelay, opts.AfterFunc),
	}
	c.state.Params = params.Snapshot()
	return c
}

func (c *Controller[T]) Name() string    { return c.name }
func (c *Controller[T]) Params() *Params { return c.params }

func (c *Controller[T]) ready() bool {
	return !c.requirePeriod || c.params.Initialized()
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start subscribes to the params and issues the first fetch when the view is ready.
// ctx bounds every background fetch until Close.
func (c *Controller[T]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.unsub != nil || c.closed {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	unsub := c.params.Subscribe(c.onChange)
	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()

	if c.ready() {
		c.spawn(false)
	}
}

// Close stops the debouncer, cancels in-flight fetches and waits for them.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub, cancel := c.unsub, c.cancel
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.debounce.Stop()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// Wait blocks until every background fetch issued so far has finished.
func (c *Controller[T]) Wait() { c.wg.Wait() }

// Subscribe registers fn for every state transition and returns its unsubscribe func.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.subs) {
			c.subs[idx] = nil
		}
	}
}

func (c *Controller[T]) onChange(ch Change) {
	if !c.ready() {
		return
	}
	if ch.Kind == ChangeSearch {
		c.debounce.Trigger(c.settle)
		return
	}
	// The immediate fetch already carries the newest search text.
	c.debounce.Cancel()
	c.spawn(false)
}

// settle runs when typing stops. SetSearch resets the page and every other
// change cancels the timer, so Page is 1 here unless that contract breaks.
func (c *Controller[T]) settle() {
	if c.params.Snapshot().Page != 1 {
		c.params.SetPage(1)
		return
	}
	c.spawn(true)
}

func (c *Controller[T]) spawn(silent bool) {
	c.mu.Lock()
	if c.closed || c.ctx == nil {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()

	seq, p := c.begin(silent)
	go func() {
		defer c.wg.Done()
		_ = c.run(ctx, seq, p)
	}()
}

// Refresh fetches the current params synchronously with the loading flag set.
// A refresh superseded by a newer request returns nil.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.refresh(ctx, false)
}

// Resync is a silent Refresh: rows stay visible and only Refreshing is set.
func (c *Controller[T]) Resync(ctx context.Context) error {
	return c.refresh(ctx, true)
}

func (c *Controller[T]) refresh(ctx context.Context, silent bool) error {
	if !c.ready() {
		return ErrNotReady
	}
	seq, p := c.begin(silent)
	return c.run(ctx, seq, p)
}

// begin snapshots the params and takes the next sequence number under one lock,
// so a higher seq never carries older params. Params never calls out while locked.
func (c *Controller[T]) begin(silent bool) (uint64, QueryParams) {
	c.mu.Lock()
	p := c.params.Snapshot()
	c.seq++
	seq := c.seq
	if silent {
		c.state.Refreshing = true
	} else {
		c.state.Loading = true
		c.state.Phase = PhaseLoading
	}
	c.state.Params = p
	st, subs := c.state, slices.Clone(c.subs)
	c.mu.Unlock()

	c.publish(st, subs)
	return seq, p
}

func (c *Controller[T]) run(ctx context.Context, seq uint64, p QueryParams) error {
	if err := model.Validate(p); err != nil {
		return c.commit(seq, api.Page[T]{}, err)
	}
	start := time.Now()
	page, err := c.src.List(ctx, p.Values())
	c.log.Debug("list fetched", "seq", seq, "page", p.Page, "search", p.Search, "duration", time.Since(start), "error", err)
	return c.commit(seq, page, err)
}

func (c *Controller[T]) commit(seq uint64, page api.Page[T], err error) error {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("stale response dropped", "seq", seq)
		return nil
	}
	c.state.Loading = false
	c.state.Refreshing = false
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = err
		c.state.Message = api.Message(err, "Failed to load "+c.name+".")
	} else {
		c.state.Phase = PhaseSuccess
		c.state.Err = nil
		c.state.Message = ""
		c.state.HasResult = true
		c.state.Result = Result[T]{
			Items:      page.Items,
			Pagination: page.Pagination.Normalize(len(page.Items)),
			Statistics: page.Statistics,
		}
	}
	st, subs, closed := c.state, slices.Clone(c.subs), c.closed
	c.mu.Unlock()

	c.publish(st, subs)
	if err != nil && !(closed && errors.Is(err, context.Canceled)) {
		c.notify.Notify(Notice{Level: LevelError, Text: st.Message})
	}
	return err
}

func (c *Controller[T]) publish(st State[T], subs []func(State[T])) {
	for _, fn := range subs {
		if fn != nil {
			fn(st)
		}
	}
}

func (c *Controller[T]) index(id int) int {
	for i, it := range c.state.Result.Items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

// Patch applies fn to a copy of the row with the given id. The published slice is never mutated.
func (c *Controller[T]) Patch(id int, fn func(*T)) bool {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	items := slices.Clone(c.state.Result.Items)
	fn(&items[i])
	c.state.Result.Items = items
	st, subs := c.state, slices.Clone(c.subs)
	c.mu.Unlock()

	c.publish(st, subs)
	return true
}

// Remove drops the row with the given id from the visible page.
func (c *Controller[T]) Remove(id int) bool {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.state.Result.Items = slices.Delete(slices.Clone(c.state.Result.Items), i, i+1)
	st, subs := c.state, slices.Clone(c.subs)
	c.mu.Unlock()

	c.publish(st, subs)
	return true
}

// Row returns the visible row with the given id.
func (c *Controller[T]) Row(id int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.state.Result.Items[i], true
	}
	var zero T
	return zero, false
}
