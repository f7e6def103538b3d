package api

import (
	"context"
	"net/http"
	"net/url"

	"mbkm-console/internal/model"
)

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T
	Pagination model.Pagination
	Statistics model.Statistics
}

// Resource exposes the standard endpoint set of one collection under /{name}.
type Resource[T any] struct {
	c    *Client
	name string
}

func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{c: c, name: name}
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) item(id int, rest ...string) string {
	p := r.name + "/" + model.IDString(id)
	for _, s := range rest {
		p += "/" + s
	}
	return p
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	env, err := r.c.doJSON(ctx, http.MethodGet, r.name, query, nil)
	if err != nil {
		return Page[T]{}, err
	}
	items, err := decodeData[[]T](env)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	out := Page[T]{Items: items, Statistics: env.Statistics}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	out.Pagination = out.Pagination.Normalize(len(items))
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	env, err := r.c.doJSON(ctx, http.MethodGet, r.item(id), nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](env)
}

func (r *Resource[T]) Create(ctx context.Context, in any) (T, string, error) {
	env, err := r.c.doJSON(ctx, http.MethodPost, r.name, nil, in)
	if err != nil {
		var zero T
		return zero, "", err
	}
	out, err := decodeData[T](env)
	return out, env.Message, err
}

func (r *Resource[T]) Update(ctx context.Context, id int, in any) (T, string, error) {
	env, err := r.c.doJSON(ctx, http.MethodPut, r.item(id), nil, in)
	if err != nil {
		var zero T
		return zero, "", err
	}
	out, err := decodeData[T](env)
	return out, env.Message, err
}

// Delete soft-deletes by default; force requests a permanent delete.
func (r *Resource[T]) Delete(ctx context.Context, id int, force bool) (string, error) {
	var q url.Values
	if force {
		q = url.Values{"force": {"true"}}
	}
	env, err := r.c.doJSON(ctx, http.MethodDelete, r.item(id), q, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ToggleStatus flips the active flag and returns only the changed status fields.
func (r *Resource[T]) ToggleStatus(ctx context.Context, id int) (model.StatusChange, string, error) {
	env, err := r.c.doJSON(ctx, http.MethodPost, r.item(id, "toggle-status"), nil, nil)
	if err != nil {
		return model.StatusChange{}, "", err
	}
	sc, err := decodeData[model.StatusChange](env)
	if sc.ID == 0 {
		sc.ID = id
	}
	return sc, env.Message, err
}

// SetStatus moves an entity to an explicit status (registrant review).
func (r *Resource[T]) SetStatus(ctx context.Context, id int, in model.RegistrantReview) (model.StatusChange, string, error) {
	if err := model.Validate(in); err != nil {
		return model.StatusChange{}, "", err
	}
	env, err := r.c.doJSON(ctx, http.MethodPost, r.item(id, "status"), nil, in)
	if err != nil {
		return model.StatusChange{}, "", err
	}
	sc, err := decodeData[model.StatusChange](env)
	if sc.ID == 0 {
		sc.ID = id
	}
	if sc.Status == "" {
		sc.Status = string(in.Status)
	}
	return sc, env.Message, err
}

// Active returns the unpaginated active subset (used to populate filter pickers).
func (r *Resource[T]) Active(ctx context.Context) ([]T, error) {
	env, err := r.c.doJSON(ctx, http.MethodGet, r.name+"/active", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]T](env)
}

func (r *Resource[T]) FilterOptions(ctx context.Context) (model.FilterOptions, error) {
	env, err := r.c.doJSON(ctx, http.MethodGet, r.name+"/filter-options", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[model.FilterOptions](env)
}

// Export requests the full, unpaginated dataset matching filters.
func (r *Resource[T]) Export(ctx context.Context, filters map[string]string) ([]model.Record, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	env, err := r.c.doJSON(ctx, http.MethodPost, r.name+"/export", nil, filters)
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Record](env)
}
