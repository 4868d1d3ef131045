package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/idilsaglam/todos/internal/model"
)

// maxRequestBody bounds create payloads.
const maxRequestBody = 64 << 10

type listResponse struct {
	Todos []model.Item `json:"todos"`
}

type createRequest struct {
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// GET /todos
func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list todos", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, listResponse{Todos: items})
}

// POST /todos
func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validateCreate(doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	it, err := s.store.Create(r.Context(), req.Body, req.Completed)
	if err != nil {
		s.logger.Error("create todo", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.logger.Debug("created", "id", it.ID)
	writeJSON(w, http.StatusCreated, it)
}
