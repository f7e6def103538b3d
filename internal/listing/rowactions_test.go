package listing

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbkm-console/internal/api"
	"mbkm-console/internal/model"
)

// backend is a tiny server-side row store so resyncs see mutations.
type backend struct {
	mu    sync.Mutex
	items []row
}

func (b *backend) list(context.Context, url.Values) (api.Page[row], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return api.Page[row]{Items: slices.Clone(b.items), Pagination: model.Pagination{PerPage: 15, Total: len(b.items)}}, nil
}

func (b *backend) activate(id int) func(context.Context) (Outcome[row], error) {
	return func(context.Context) (Outcome[row], error) {
		b.mu.Lock()
		for i := range b.items {
			if b.items[i].ID == id {
				b.items[i].Active = true
			}
		}
		b.mu.Unlock()
		return Outcome[row]{Patch: func(r *row) { r.Active = true }, Message: "Status updated"}, nil
	}
}

func loadedController(t *testing.T, items []row) (*Controller[row], *fakeSource, *backend) {
	t.Helper()
	b := &backend{items: slices.Clone(items)}
	src := &fakeSource{list: b.list}
	c := newController(t, src, Options[row]{})
	require.NoError(t, c.Refresh(context.Background()))
	return c, src, b
}

func TestSameRowActionIsRejectedWhileBusy(t *testing.T) {
	t.Parallel()
	c, src, b := loadedController(t, rows(10))
	notes := &noticeLog{}
	acts := NewRowActions[row](c, notes, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- acts.Perform(context.Background(), 7, "toggle", func(ctx context.Context) (Outcome[row], error) {
			close(started)
			<-release
			return b.activate(7)(ctx)
		})
	}()
	<-started
	require.True(t, acts.IsBusy(7))

	secondCalled := false
	err := acts.Perform(context.Background(), 7, "toggle", func(context.Context) (Outcome[row], error) {
		secondCalled = true
		return Outcome[row]{}, nil
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, secondCalled)

	// another row proceeds independently
	require.NoError(t, acts.Perform(context.Background(), 3, "toggle", b.activate(3)))
	r3, _ := c.Row(3)
	assert.True(t, r3.Active)
	assert.Equal(t, []int{7}, acts.BusyIDs())

	close(release)
	require.NoError(t, <-done)
	r7, _ := c.Row(7)
	assert.True(t, r7.Active)
	assert.Empty(t, acts.Busy())
	// initial load plus one resync per successful action
	assert.Equal(t, 3, src.count())
}

func TestFailedActionLeavesRowAndClearsBusy(t *testing.T) {
	t.Parallel()
	c, src, _ := loadedController(t, rows(3))
	notes := &noticeLog{}
	acts := NewRowActions[row](c, notes, nil)

	err := acts.Perform(context.Background(), 2, "toggle", func(context.Context) (Outcome[row], error) {
		return Outcome[row]{}, &api.Error{Status: 409, Message: "Quota is full"}
	})
	require.Error(t, err)
	assert.False(t, acts.IsBusy(2))
	r2, _ := c.Row(2)
	assert.False(t, r2.Active)
	assert.Equal(t, "Quota is full", notes.lastText())
	assert.Equal(t, 1, src.count(), "no resync after a failed mutation")

	err = acts.Perform(context.Background(), 2, "toggle", func(context.Context) (Outcome[row], error) {
		return Outcome[row]{}, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, "Failed to toggle.", notes.lastText())
}

func TestPanickingActionClearsBusy(t *testing.T) {
	t.Parallel()
	c, _, _ := loadedController(t, rows(3))
	acts := NewRowActions[row](c, nil, nil)

	var seen []map[int]bool
	acts.Subscribe(func(m map[int]bool) { seen = append(seen, m) })

	assert.Panics(t, func() {
		_ = acts.Perform(context.Background(), 1, "toggle", func(context.Context) (Outcome[row], error) {
			panic("handler bug")
		})
	})
	assert.False(t, acts.IsBusy(1))
	require.Len(t, seen, 2)
	assert.True(t, seen[0][1])
	assert.Empty(t, seen[1])
}

func TestResyncFailureIsDistinguishable(t *testing.T) {
	t.Parallel()
	c, src, b := loadedController(t, rows(3))
	acts := NewRowActions[row](c, nil, nil)

	src.setList(func(context.Context, url.Values) (api.Page[row], error) {
		return api.Page[row]{}, &api.NetworkError{Op: "GET /rows", Err: errors.New("reset")}
	})
	err := acts.Perform(context.Background(), 1, "toggle", b.activate(1))
	var rerr *ResyncError
	require.ErrorAs(t, err, &rerr)
	var nerr *api.NetworkError
	assert.ErrorAs(t, err, &nerr)

	r1, _ := c.Row(1)
	assert.True(t, r1.Active, "local patch survives a failed resync")
}

func TestDeleteRequiresExactName(t *testing.T) {
	t.Parallel()
	items := []row{{ID: 5, Name: "PT Telkom Indonesia"}, {ID: 6, Name: "Gojek"}}
	c, _, _ := loadedController(t, items)
	acts := NewRowActions[row](c, nil, nil)

	var calls []bool
	del := func(ctx context.Context, id int, force bool) (string, error) {
		calls = append(calls, force)
		return "Place deleted", nil
	}

	for _, confirm := range []string{"", "pt telkom indonesia", "PT Telkom Indonesia ", "PT Telkom"} {
		err := acts.Delete(context.Background(), items[0], confirm, false, del)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, confirm)
		assert.Equal(t, "confirmation", verr.Field)
	}
	assert.Empty(t, calls)

	require.NoError(t, acts.Delete(context.Background(), items[0], "PT Telkom Indonesia", true, del))
	assert.Equal(t, []bool{true}, calls)
}

func TestDeleteRemovesRowBeforeResync(t *testing.T) {
	t.Parallel()
	items := []row{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	c, src, _ := loadedController(t, items)
	acts := NewRowActions[row](c, nil, nil)

	release := make(chan struct{})
	src.setList(func(context.Context, url.Values) (api.Page[row], error) {
		<-release
		return api.Page[row]{Items: items[1:]}, nil
	})
	done := make(chan error, 1)
	go func() {
		done <- acts.Delete(context.Background(), items[0], "a", false, func(context.Context, int, bool) (string, error) {
			return "", nil
		})
	}()
	require.Eventually(t, func() bool { return len(c.State().Result.Items) == 1 }, time.Second, time.Millisecond)
	close(release)
	require.NoError(t, <-done)
}

func TestBusySubscriberCanUnsubscribe(t *testing.T) {
	t.Parallel()
	c, _, b := loadedController(t, rows(3))
	acts := NewRowActions[row](c, nil, nil)

	calls := 0
	unsub := acts.Subscribe(func(map[int]bool) { calls++ })
	require.NoError(t, acts.Perform(context.Background(), 1, "activate", b.activate(1)))
	assert.Equal(t, 2, calls, "busy set and cleared")

	unsub()
	require.NoError(t, acts.Perform(context.Background(), 2, "activate", b.activate(2)))
	assert.Equal(t, 2, calls)
}

func TestCheckConfirmation(t *testing.T) {
	t.Parallel()
	r := row{ID: 1, Name: "PT Telkom Indonesia"}
	assert.NoError(t, CheckConfirmation(r, "PT Telkom Indonesia"))

	for _, in := range []string{"", "pt telkom indonesia", "PT Telkom Indonesia "} {
		err := CheckConfirmation(r, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %q", in)
		assert.Equal(t, "confirmation", verr.Field)
		assert.Contains(t, verr.Message, `"PT Telkom Indonesia"`)
	}
}
