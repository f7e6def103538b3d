package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// ErrBusy rejects an action on a row that already has one in flight.
var ErrBusy = errors.New("listing: action already in progress for this row")

// ResyncError reports that the mutation succeeded but the list refresh after it failed.
type ResyncError struct {
	Err error
}

func (e *ResyncError) Error() string { return "listing: resync after action: " + e.Err.Error() }
func (e *ResyncError) Unwrap() error { return e.Err }

// Outcome is what a successful mutation does to the visible row.
type Outcome[T any] struct {
	Patch   func(*T)
	Remove  bool
	Message string
}

// RowStore is the part of a Controller the row actions write to.
type RowStore[T any] interface {
	Patch(id int, fn func(*T)) bool
	Remove(id int) bool
	Resync(ctx context.Context) error
}

// RowActions owns the busy set of one view: at most one mutating action per id.
type RowActions[T Entity] struct {
	rows   RowStore[T]
	notify Notifier
	log    *slog.Logger

	mu   sync.Mutex
	busy map[int]bool
	subs []func(map[int]bool)
}

func NewRowActions[T Entity](rows RowStore[T], notify Notifier, log *slog.Logger) *RowActions[T] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RowActions[T]{
		rows:   rows,
		notify: notifierOrDiscard(notify),
		log:    log,
		busy:   map[int]bool{},
	}
}

// Subscribe registers fn for every busy-set change and returns its unsubscribe func.
// fn receives a copy.
func (a *RowActions[T]) Subscribe(fn func(map[int]bool)) func() {
	a.mu.Lock()
	a.subs = append(a.subs, fn)
	idx := len(a.subs) - 1
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if idx < len(a.subs) {
			a.subs[idx] = nil
		}
	}
}

func (a *RowActions[T]) IsBusy(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy[id]
}

// Busy returns a copy of the busy set.
func (a *RowActions[T]) Busy() map[int]bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.busy)
}

func (a *RowActions[T]) BusyIDs() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Sorted(maps.Keys(a.busy))
}

func (a *RowActions[T]) setBusy(id int, busy bool) bool {
	a.mu.Lock()
	if busy && a.busy[id] {
		a.mu.Unlock()
		return false
	}
	if busy {
		a.busy[id] = true
	} else {
		delete(a.busy, id)
	}
	snap, subs := maps.Clone(a.busy), slices.Clone(a.subs)
	a.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(snap)
		}
	}
	return true
}

// Perform runs one mutating action for id, then patches the row and resyncs
// the list. A failed mutation leaves the row untouched; a failed resync is
// returned as *ResyncError.
func (a *RowActions[T]) Perform(ctx context.Context, id int, action string, run func(context.Context) (Outcome[T], error)) error {
	if !a.setBusy(id, true) {
		a.log.Debug("row action rejected, busy", "id", id, "action", action)
		return ErrBusy
	}
	defer a.setBusy(id, false)

	a.log.Debug("row action", "id", id, "action", action)
	out, err := run(ctx)
	if err != nil {
		a.notify.Notify(Notice{Level: LevelError, Text: errorText(err, fmt.Sprintf("Failed to %s.", action))})
		return err
	}
	switch {
	case out.Remove:
		a.rows.Remove(id)
	case out.Patch != nil:
		a.rows.Patch(id, out.Patch)
	}
	msg := out.Message
	if msg == "" {
		msg = fmt.Sprintf("%s done.", action)
	}
	a.notify.Notify(Notice{Level: LevelSuccess, Text: msg})

	if err := a.rows.Resync(ctx); err != nil {
		return &ResyncError{Err: err}
	}
	return nil
}

// CheckConfirmation returns a *ValidationError unless confirmation equals the
// row's name byte for byte.
func CheckConfirmation(row Entity, confirmation string) error {
	if confirmation != row.DisplayName() {
		return &ValidationError{Field: "confirmation", Message: fmt.Sprintf("type %q to confirm", row.DisplayName())}
	}
	return nil
}

// Delete requires confirmation to equal the row's name exactly. On mismatch
// it returns a *ValidationError and del is never called.
func (a *RowActions[T]) Delete(ctx context.Context, row T, confirmation string, force bool, del func(ctx context.Context, id int, force bool) (string, error)) error {
	if err := CheckConfirmation(row, confirmation); err != nil {
		return err
	}
	action := "delete"
	if force {
		action = "permanently delete"
	}
	return a.Perform(ctx, row.EntityID(), action, func(ctx context.Context) (Outcome[T], error) {
		msg, err := del(ctx, row.EntityID(), force)
		if err != nil {
			return Outcome[T]{}, err
		}
		return Outcome[T]{Remove: true, Message: msg}, nil
	})
}
