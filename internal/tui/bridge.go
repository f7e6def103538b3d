package tui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"mbkm-console/internal/listing"
)

type noticeMsg struct{ notice listing.Notice }

type viewChangedMsg struct{}

// Bridge forwards notices and view changes from background fetches into the
// running program. Messages posted before the program starts are queued.
type Bridge struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	queued []tea.Msg

	dirty atomic.Bool
}

func NewBridge() *Bridge { return &Bridge{} }

// Notify implements listing.Notifier.
func (b *Bridge) Notify(n listing.Notice) {
	b.post(noticeMsg{notice: n})
}

// changed coalesces view updates: at most one viewChangedMsg is in flight.
func (b *Bridge) changed() {
	if b.dirty.Swap(true) {
		return
	}
	b.post(viewChangedMsg{})
}

func (b *Bridge) ack() { b.dirty.Store(false) }

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	if b.send == nil {
		b.queued = append(b.queued, msg)
		b.mu.Unlock()
		return
	}
	send := b.send
	b.mu.Unlock()
	send(msg)
}

// attach delivers the queue and switches to direct sends. Program.Send blocks
// until the event loop runs, so call it from its own goroutine.
func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	queued := b.queued
	b.queued = nil
	b.send = send
	b.mu.Unlock()
	for _, msg := range queued {
		send(msg)
	}
}

// drain returns and clears the queued messages (tests).
func (b *Bridge) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queued
	b.queued = nil
	return q
}
