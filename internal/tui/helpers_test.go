package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mbkm-console/internal/api"
	"mbkm-console/internal/console"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/mockapi"
)

// manualClock holds debounced searches until fire is called.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	f       func()
	stopped bool
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) listing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (c *manualClock) fire() {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.pending {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.pending = nil
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type harness struct {
	m      appModel
	sess   *console.Session
	bridge *Bridge
	clock  *manualClock
	copied []string
	lists  atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{bridge: NewBridge(), clock: &manualClock{}}
	backend := mockapi.New(mockapi.Options{Seed: true}).Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/registrants" {
			h.lists.Add(1)
		}
		backend.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := api.New(api.Options{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	h.sess = console.New(console.Options{
		Client:    client,
		Notifier:  h.bridge,
		PerPage:   15,
		ExportDir: t.TempDir(),
		AfterFunc: h.clock.AfterFunc,
	})
	t.Cleanup(h.sess.Close)

	h.m = newAppModel(context.Background(), h.sess, h.bridge, Options{
		Copy: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	h.send(h.m.initCmd()())
	h.sess.Wait()
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	mm, cmd := h.m.Update(msg)
	h.m = mm.(appModel)
	return cmd
}

// press sends one key and runs the resulting command the way the program
// loop would, then waits for background fetches.
func (h *harness) press(k string) {
	cmd := h.send(keyMsg(k))
	// "/" only returns the cursor blink.
	if cmd != nil && k != "/" {
		if msg := cmd(); msg != nil {
			h.send(msg)
		}
	}
	h.sess.Wait()
	h.flush()
}

// fetches counts registrant list requests seen by the backend.
func (h *harness) fetches() int { return int(h.lists.Load()) }

// flush delivers queued bridge messages.
func (h *harness) flush() {
	for _, msg := range h.bridge.drain() {
		h.send(msg)
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}
