package webtui

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mbkm-console/internal/docs"
)

type docsVM struct {
	Topics   []docs.Topic
	Topic    string
	Title    string
	Sections []section
	Body     template.HTML
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	vm := docsVM{Topics: docs.Index()}
	if topic := chi.URLParam(r, "topic"); topic != "" {
		body, ok := docs.Get(topic)
		if !ok {
			http.NotFound(w, r)
			return
		}
		vm.Topic = topic
		vm.Title = docs.Title(body, topic)
		vm.Body, vm.Sections = renderDoc(body)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "docs.html", vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
