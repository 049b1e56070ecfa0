package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/muxhandlers"
)

// ValuesResponse is returned by GET /api/values.
type ValuesResponse struct {
	Values   []string `json:"values"`
	ClientIP string   `json:"client_ip,omitempty"`
}

// ValueRequest is the body accepted when creating or updating a value.
type ValueRequest struct {
	Value string `json:"value"`
}

func (h *handlers) registerValues(g *mux.Group) {
	g.HandleFunc("/", h.listValues).Methods(http.MethodGet)
	g.HandleFunc("/", h.createValue).Methods(http.MethodPost)
	g.HandleFunc("/{id:int}", h.getValue).Methods(http.MethodGet)
	g.HandleFunc("/{id:int}", h.updateValue).Methods(http.MethodPut, http.MethodPatch)
	g.HandleFunc("/{id:int}", h.deleteValue).Methods(http.MethodDelete)
}

func (h *handlers) listValues(w http.ResponseWriter, r *http.Request) {
	ip, _ := muxhandlers.ClientIPFromContext(r.Context())

	mux.ResponseJSON(w, http.StatusOK, ValuesResponse{
		Values:   []string{"value1", "value2"},
		ClientIP: ip,
	})
}

func (h *handlers) getValue(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, "value")
}

func (h *handlers) createValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := mux.BindJSON(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	mux.ResponseJSON(w, http.StatusCreated, req)
}

func (h *handlers) updateValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := mux.BindJSON(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deleteValue(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) badBody(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.DebugContext(r.Context(), "invalid request body",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	code := http.StatusBadRequest
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		code = http.StatusRequestEntityTooLarge
	}

	mux.ResponseError(w, code, "invalid request body: "+err.Error())
}
