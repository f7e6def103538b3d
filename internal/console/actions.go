package console

import (
	"context"
	"errors"
	"fmt"

	"mbkm-console/internal/api"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
)

// statusPatcher is a pointer to an entity that can absorb a status payload.
type statusPatcher[T any] interface {
	*T
	ApplyStatus(model.StatusChange)
}

// Toggle flips the active flag of row id and patches it from the server's status fields.
func Toggle[T listing.Entity, P statusPatcher[T]](ctx context.Context, v *View[T], id int) error {
	return v.Actions.Perform(ctx, id, "toggle status", func(ctx context.Context) (listing.Outcome[T], error) {
		change, msg, err := v.Resource.ToggleStatus(ctx, id)
		if err != nil {
			return listing.Outcome[T]{}, err
		}
		return listing.Outcome[T]{
			Patch:   func(row *T) { P(row).ApplyStatus(change) },
			Message: msg,
		}, nil
	})
}

// Delete removes row after the typed confirmation matched its name.
func Delete[T listing.Entity](ctx context.Context, v *View[T], row T, confirmation string, force bool) error {
	return v.Actions.Delete(ctx, row, confirmation, force, v.Resource.Delete)
}

func (s *Session) ToggleProgram(ctx context.Context, id int) error {
	return Toggle(ctx, s.Programs, id)
}

func (s *Session) TogglePlace(ctx context.Context, id int) error {
	return Toggle(ctx, s.Places, id)
}

func (s *Session) ToggleSetting(ctx context.Context, id int) error {
	return Toggle(ctx, s.Settings, id)
}

// Review moves a registrant to approved, rejected or back to pending.
func (s *Session) Review(ctx context.Context, id int, status model.RegistrantStatus, note string) error {
	in := model.RegistrantReview{Status: status, Note: note}
	if err := model.Validate(in); err != nil {
		return err
	}
	return s.Registrants.Actions.Perform(ctx, id, "review", func(ctx context.Context) (listing.Outcome[model.Registrant], error) {
		change, msg, err := s.client.Registrants().SetStatus(ctx, id, in)
		if err != nil {
			return listing.Outcome[model.Registrant]{}, err
		}
		if msg == "" {
			msg = fmt.Sprintf("Registrant marked %s.", status)
		}
		return listing.Outcome[model.Registrant]{
			Patch:   func(r *model.Registrant) { r.ApplyStatus(change) },
			Message: msg,
		}, nil
	})
}

// CreateProgram fills an empty period from the resolved one before validating.
func (s *Session) CreateProgram(ctx context.Context, in model.ProgramInput) (model.Program, error) {
	in.DefaultPeriod(s.Period())
	return create(ctx, s, s.Programs, in)
}

func (s *Session) CreatePlace(ctx context.Context, in model.PlaceInput) (model.Place, error) {
	return create(ctx, s, s.Places, in)
}

func (s *Session) CreateSetting(ctx context.Context, in model.SettingInput) (model.Setting, error) {
	in.DefaultPeriod(s.Period())
	return create(ctx, s, s.Settings, in)
}

func create[T listing.Entity](ctx context.Context, s *Session, v *View[T], in any) (T, error) {
	var zero T
	if err := model.Validate(in); err != nil {
		return zero, err
	}
	out, msg, err := v.Resource.Create(ctx, in)
	if err != nil {
		s.notify.Notify(listing.Notice{Level: listing.LevelError, Text: api.Message(err, "Failed to create.")})
		return zero, err
	}
	if msg == "" {
		msg = "Created."
	}
	s.notify.Notify(listing.Notice{Level: listing.LevelSuccess, Text: msg})
	if err := v.Controller.Resync(ctx); err != nil && !errors.Is(err, listing.ErrNotReady) {
		return out, &listing.ResyncError{Err: err}
	}
	return out, nil
}
