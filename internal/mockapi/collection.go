package mockapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"mbkm-console/internal/model"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// collection is one REST resource held in memory. Optional behaviours are nil
// when the resource does not support them (the route is then not mounted).
type collection[T any] struct {
	name  string
	label string
	items []T

	nextID int
	id     func(T) int
	setID  func(*T, int)

	match   func(T, url.Values) bool
	stats   func([]T) model.Statistics
	record  func(T) model.Record
	options func([]T) model.FilterOptions
	active  func(T) bool

	create  func(json.RawMessage) (T, error)
	update  func(*T, json.RawMessage) error
	toggle  func(*T) model.StatusChange
	review  func(*T, model.RegistrantReview) model.StatusChange
	deleted func(T) bool
	trash   func(*T)
	guard   func(T) error

	// afterToggle runs with the server lock held (settings keep a single active row).
	afterToggle func(c *collection[T], id int)
	routes      func(r chi.Router)
}

func (c *collection[T]) find(id int) *T {
	for i := range c.items {
		if c.id(c.items[i]) == id {
			return &c.items[i]
		}
	}
	return nil
}

func (c *collection[T]) isDeleted(it T) bool {
	return c.deleted != nil && c.deleted(it)
}

func (c *collection[T]) add(it T) T {
	c.nextID++
	c.setID(&it, c.nextID)
	c.items = append(c.items, it)
	return it
}

func (c *collection[T]) remove(id int) {
	out := c.items[:0]
	for _, it := range c.items {
		if c.id(it) != id {
			out = append(out, it)
		}
	}
	c.items = out
}

func (c *collection[T]) filter(q url.Values) []T {
	withTrashed := q.Get("with_trashed") == "true"
	var out []T
	for _, it := range c.items {
		if c.isDeleted(it) && !withTrashed {
			continue
		}
		if c.match != nil && !c.match(it, q) {
			continue
		}
		out = append(out, it)
	}
	return sortedByID(out, c.id)
}

func mount[T any](r chi.Router, s *Server, c *collection[T]) {
	r.Route("/"+c.name, func(r chi.Router) {
		if c.routes != nil {
			c.routes(r)
		}
		r.Get("/", listHandler(s, c))
		r.Get("/active", activeHandler(s, c))
		r.Get("/filter-options", optionsHandler(s, c))
		r.Post("/export", exportHandler(s, c))
		r.Get("/{id}", getHandler(s, c))
		r.Delete("/{id}", deleteHandler(s, c))
		if c.create != nil {
			r.Post("/", createHandler(s, c))
		}
		if c.update != nil {
			r.Put("/{id}", updateHandler(s, c))
		}
		if c.toggle != nil {
			r.Post("/{id}/toggle-status", toggleHandler(s, c))
		}
		if c.review != nil {
			r.Post("/{id}/status", reviewHandler(s, c))
		}
	})
}

func listHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := queryInt(q, "page", 1)
		perPage := queryInt(q, "per_page", defaultPerPage)
		if perPage > maxPerPage {
			perPage = maxPerPage
		}

		s.mu.Lock()
		matched := c.filter(q)
		var stats model.Statistics
		if c.stats != nil {
			unfiltered := url.Values{}
			for k, v := range q {
				unfiltered[k] = v
			}
			unfiltered.Del("status")
			unfiltered.Del("search")
			stats = c.stats(c.filter(unfiltered))
		}
		s.mu.Unlock()

		total := len(matched)
		start := (page - 1) * perPage
		end := start + perPage
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		items := make([]T, 0, end-start)
		items = append(items, matched[start:end]...)

		pg := model.Pagination{CurrentPage: page, PerPage: perPage, Total: total}.Normalize(len(items))
		echo := map[string]string{}
		for k := range q {
			if k != "page" && k != "per_page" {
				echo[k] = q.Get(k)
			}
		}
		respond(w, http.StatusOK, envelope{
			Success:    true,
			Message:    c.label + " list",
			Data:       items,
			Pagination: &pg,
			Statistics: stats,
			Filters:    echo,
		})
	}
}

func activeHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := make([]T, 0)
		for _, it := range c.filter(url.Values{}) {
			if c.active == nil || c.active(it) {
				out = append(out, it)
			}
		}
		s.mu.Unlock()
		ok(w, "Active "+c.name, out)
	}
}

func optionsHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		opts := model.FilterOptions{}
		if c.options != nil {
			opts = c.options(c.filter(url.Values{}))
		}
		s.mu.Unlock()
		ok(w, "Filter options", opts)
	}
}

func exportHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters map[string]string
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
				fail(w, http.StatusBadRequest, "invalid filter body", nil)
				return
			}
		}
		q := url.Values{}
		for k, v := range filters {
			q.Set(k, v)
		}
		s.mu.Lock()
		matched := c.filter(q)
		s.mu.Unlock()

		records := make([]model.Record, 0, len(matched))
		for _, it := range matched {
			records = append(records, c.record(it))
		}
		ok(w, "Export data", records)
	}
}

func getHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r)
		if !valid {
			fail(w, http.StatusBadRequest, "invalid id", nil)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		it := c.find(id)
		if it == nil || c.isDeleted(*it) {
			fail(w, http.StatusNotFound, c.label+" not found", nil)
			return
		}
		ok(w, c.label+" detail", *it)
	}
}

func createHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			fail(w, http.StatusBadRequest, "invalid json body", nil)
			return
		}
		it, err := c.create(raw)
		if err != nil {
			failValidation(w, err)
			return
		}
		s.mu.Lock()
		it = c.add(it)
		if c.afterToggle != nil && c.active != nil && c.active(it) {
			c.afterToggle(c, c.id(it))
		}
		s.mu.Unlock()
		respond(w, http.StatusCreated, envelope{Success: true, Message: c.label + " created", Data: it})
	}
}

func updateHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r)
		if !valid {
			fail(w, http.StatusBadRequest, "invalid id", nil)
			return
		}
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			fail(w, http.StatusBadRequest, "invalid json body", nil)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		it := c.find(id)
		if it == nil || c.isDeleted(*it) {
			fail(w, http.StatusNotFound, c.label+" not found", nil)
			return
		}
		next := *it
		if err := c.update(&next, raw); err != nil {
			failValidation(w, err)
			return
		}
		*it = next
		if c.afterToggle != nil && c.active != nil && c.active(next) {
			c.afterToggle(c, id)
		}
		ok(w, c.label+" updated", next)
	}
}

func deleteHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r)
		if !valid {
			fail(w, http.StatusBadRequest, "invalid id", nil)
			return
		}
		force := r.URL.Query().Get("force") == "true"

		s.mu.Lock()
		defer s.mu.Unlock()
		it := c.find(id)
		if it == nil || (c.isDeleted(*it) && !force) {
			fail(w, http.StatusNotFound, c.label+" not found", nil)
			return
		}
		if c.guard != nil {
			if err := c.guard(*it); err != nil {
				fail(w, http.StatusUnprocessableEntity, err.Error(), nil)
				return
			}
		}
		if c.trash != nil && !force {
			c.trash(it)
			ok(w, c.label+" moved to trash", nil)
			return
		}
		c.remove(id)
		ok(w, c.label+" deleted permanently", nil)
	}
}

func toggleHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r)
		if !valid {
			fail(w, http.StatusBadRequest, "invalid id", nil)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		it := c.find(id)
		if it == nil || c.isDeleted(*it) {
			fail(w, http.StatusNotFound, c.label+" not found", nil)
			return
		}
		change := c.toggle(it)
		if c.afterToggle != nil && change.IsActive != nil && *change.IsActive {
			c.afterToggle(c, id)
		}
		ok(w, c.label+" status updated", change)
	}
}

func reviewHandler[T any](s *Server, c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r)
		if !valid {
			fail(w, http.StatusBadRequest, "invalid id", nil)
			return
		}
		var in model.RegistrantReview
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			fail(w, http.StatusBadRequest, "invalid json body", nil)
			return
		}
		if err := model.Validate(in); err != nil {
			failValidation(w, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		it := c.find(id)
		if it == nil {
			fail(w, http.StatusNotFound, c.label+" not found", nil)
			return
		}
		ok(w, c.label+" status updated", c.review(it, in))
	}
}
