package ioweb

import (
	"fmt"
	"net/http"

	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/go-chi/chi/v5/middleware"
)

type errorPage struct {
	Status    int
	Title     string
	Message   string
	RequestID string
}

// TemplateError creates an error for views that cannot be parsed.
func TemplateError(err error) error {
	msg := "Cannot load web page templates"

	return &gn.Error{
		Code: errcode.ServerError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to load templates: %w", err),
	}
}

// ServerError creates an error for a web server that stopped
// unexpectedly.
func ServerError(addr string, err error) error {
	msg := "Web server on <em>%s</em> stopped"
	vars := []any{addr}

	return &gn.Error{
		Code: errcode.ServerError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("server on %s failed: %w", addr, err),
	}
}

// statusCode maps query errors to HTTP statuses. Only a missing record
// is a client error.
func statusCode(err error) int {
	if errcode.Is(err, errcode.QueryNotFoundError) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError logs err with the request id and renders an error page.
func (s *Server) respondError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	status := statusCode(err)

	log := logger(r.Context())
	if status == http.StatusNotFound {
		log.Info("Record not found", "path", r.URL.Path, "error", err)
		s.renderError(w, r, status, "Record does not exist.")
		return
	}

	log.Error("Request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
	)
	s.renderError(w, r, status, "Something went wrong.")
}

func (s *Server) renderError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
) {
	page := errorPage{
		Status:    status,
		Title:     http.StatusText(status),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	}

	if err := s.views.render(w, status, "error", page); err != nil {
		http.Error(w, page.Title, status)
	}
}
