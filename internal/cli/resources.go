package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"mbkm-console/internal/api"
	"mbkm-console/internal/format"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
)

// resource is the command-level face of one backend collection.
type resource interface {
	name() string
	periodic() bool
	list(ctx context.Context, p *listing.Params, log *slog.Logger) (envelope, error)
	show(ctx context.Context, id int) (envelope, error)
	create(ctx context.Context, data []byte, p model.ActivePeriod) (envelope, error)
	update(ctx context.Context, id int, data []byte, p model.ActivePeriod) (envelope, error)
	toggle(ctx context.Context, id int) (envelope, error)
	remove(ctx context.Context, id int, confirm string, force bool) (envelope, error)
	exportSource() listing.ExportSource
}

type resourceOf[T listing.Entity] struct {
	res     *api.Resource[T]
	period  bool
	headers []string
	row     func(T) []string
	// decode builds the create/update payload; nil means the console cannot write this resource.
	decode    func(data []byte, p model.ActivePeriod) (any, error)
	canToggle bool
}

func (r *resourceOf[T]) name() string                       { return r.res.Name() }
func (r *resourceOf[T]) periodic() bool                     { return r.period }
func (r *resourceOf[T]) exportSource() listing.ExportSource { return r.res }

func (r *resourceOf[T]) table(items []T) *format.Table {
	t := &format.Table{Headers: append([]string{"ID"}, r.headers...)}
	for _, it := range items {
		t.Rows = append(t.Rows, append([]string{strconv.Itoa(it.EntityID())}, r.row(it)...))
	}
	return t
}

func (r *resourceOf[T]) list(ctx context.Context, p *listing.Params, log *slog.Logger) (envelope, error) {
	ctrl := listing.NewController(listing.Options[T]{
		Name:          r.name(),
		Source:        r.res,
		Params:        p,
		Logger:        log,
		RequirePeriod: r.period,
	})
	if err := ctrl.Refresh(ctx); err != nil {
		return envelope{}, err
	}
	st := ctrl.State()
	env := envelope{
		Data: st.Result.Items,
		Meta: map[string]any{
			"pagination": st.Result.Pagination,
			"statistics": st.Result.Statistics,
			"params":     st.Params,
		},
		table: r.table(st.Result.Items),
	}
	if st.Result.Pagination.HasNext() {
		env.Hints = []string{fmt.Sprintf("more results: --page %d", st.Result.Pagination.CurrentPage+1)}
	}
	return env, nil
}

func (r *resourceOf[T]) show(ctx context.Context, id int) (envelope, error) {
	item, err := r.res.Get(ctx, id)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Data: item}, nil
}

func (r *resourceOf[T]) payload(data []byte, p model.ActivePeriod) (any, error) {
	if r.decode == nil {
		return nil, fmt.Errorf("%s cannot be written from the console", r.name())
	}
	in, err := r.decode(data, p)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (r *resourceOf[T]) create(ctx context.Context, data []byte, p model.ActivePeriod) (envelope, error) {
	in, err := r.payload(data, p)
	if err != nil {
		return envelope{}, err
	}
	item, msg, err := r.res.Create(ctx, in)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Data: item, Message: msg}, nil
}

func (r *resourceOf[T]) update(ctx context.Context, id int, data []byte, p model.ActivePeriod) (envelope, error) {
	in, err := r.payload(data, p)
	if err != nil {
		return envelope{}, err
	}
	item, msg, err := r.res.Update(ctx, id, in)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Data: item, Message: msg}, nil
}

func (r *resourceOf[T]) toggle(ctx context.Context, id int) (envelope, error) {
	if !r.canToggle {
		return envelope{}, fmt.Errorf("%s have no active flag; use review", r.name())
	}
	change, msg, err := r.res.ToggleStatus(ctx, id)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Data: change, Message: msg}, nil
}

// remove deletes id once confirm equals the row's name exactly.
func (r *resourceOf[T]) remove(ctx context.Context, id int, confirm string, force bool) (envelope, error) {
	if r.decode == nil {
		return envelope{}, fmt.Errorf("%s cannot be deleted; use review", r.name())
	}
	item, err := r.res.Get(ctx, id)
	if err != nil {
		return envelope{}, err
	}
	if err := listing.CheckConfirmation(item, confirm); err != nil {
		return envelope{}, err
	}
	msg, err := r.res.Delete(ctx, id, force)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Data: map[string]any{"id": id, "deleted": true, "force": force}, Message: msg}, nil
}

func decodeStrict[I any](data []byte) (I, error) {
	var in I
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("invalid --data: %w", err)
	}
	return in, nil
}

var resourceNames = []string{"registrants", "programs", "places", "settings"}

// IsResourceName reports whether s names a console resource (registrants, programs, places, settings).
func IsResourceName(s string) bool { return slices.Contains(resourceNames, s) }

func lookupResource(c *api.Client, name string) (resource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "registrants":
		return &resourceOf[model.Registrant]{
			res:     c.Registrants(),
			period:  true,
			headers: []string{"NIM", "Name", "Program", "Place", "Status"},
			row: func(x model.Registrant) []string {
				return []string{x.NIM, x.Name, x.ProgramName, x.PlaceName, string(x.Status)}
			},
		}, nil
	case "programs":
		return &resourceOf[model.Program]{
			res:     c.Programs(),
			period:  true,
			headers: []string{"Code", "Name", "Category", "Quota", "Registered", "Active"},
			row: func(x model.Program) []string {
				return []string{x.Code, x.Name, x.Category, strconv.Itoa(x.Quota), strconv.Itoa(x.Registered), strconv.FormatBool(x.IsActive)}
			},
			decode: func(data []byte, p model.ActivePeriod) (any, error) {
				in, err := decodeStrict[model.ProgramInput](data)
				in.DefaultPeriod(p)
				return in, err
			},
			canToggle: true,
		}, nil
	case "places":
		return &resourceOf[model.Place]{
			res:     c.Places(),
			headers: []string{"Name", "Category", "City", "Contact", "Quota", "Active"},
			row: func(x model.Place) []string {
				return []string{x.Name, x.Category, x.City, x.ContactPerson, strconv.Itoa(x.Quota), strconv.FormatBool(x.IsActive)}
			},
			decode: func(data []byte, _ model.ActivePeriod) (any, error) {
				return decodeStrict[model.PlaceInput](data)
			},
			canToggle: true,
		}, nil
	case "settings":
		return &resourceOf[model.Setting]{
			res:     c.Settings(),
			headers: []string{"Academic Year", "Semester", "Start", "End", "Active"},
			row: func(x model.Setting) []string {
				return []string{x.AcademicYear, string(x.Semester), x.StartDate, x.EndDate, strconv.FormatBool(x.IsActive)}
			},
			decode: func(data []byte, p model.ActivePeriod) (any, error) {
				in, err := decodeStrict[model.SettingInput](data)
				in.DefaultPeriod(p)
				return in, err
			},
			canToggle: true,
		}, nil
	default:
		return nil, fmt.Errorf("unknown resource %q (want one of: %s)", name, strings.Join(resourceNames, ", "))
	}
}
