// Package listing coordinates paginated, filtered views over remote
// collections: query parameters, debounced search, stale-safe fetching,
// per-row actions and exports.
package listing

import (
	"mbkm-console/internal/api"
	"mbkm-console/internal/model"
)

// ValidationError is returned for client-side rejections (bad params, confirmation mismatch).
type ValidationError = model.ValidationError

// Entity is a row that can be addressed by id and confirmed by name.
type Entity interface {
	EntityID() int
	DisplayName() string
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient user-facing message.
type Notice struct {
	Level Level
	Text  string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return discard{}
	}
	return n
}

func errorText(err error, fallback string) string {
	return api.Message(err, fallback)
}
