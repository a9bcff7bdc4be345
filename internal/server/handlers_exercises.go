package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/types"
)

func (s *Server) catalogUnavailable(w http.ResponseWriter) bool {
	if s.catalog != nil {
		return false
	}
	s.jsonResponse(w, http.StatusServiceUnavailable, ErrorBody{Error: "exercise catalog is not configured", Kind: kindUnavailable})
	return true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return n, nil
}

// handleSearchExercises searches the catalog: GET /exercises?q=&page=&limit=
func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	if s.catalogUnavailable(w) {
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	page, limit = types.NormalizePage(page, limit)

	result, err := s.catalog.SearchExercises(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), page, limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if result.Items == nil {
		result.Items = []types.CatalogExercise{}
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGetExercise returns a catalog exercise by its ExerciseDB id.
func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	if s.catalogUnavailable(w) {
		return
	}

	exercise, err := s.catalog.GetExerciseByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if exercise == nil {
		s.jsonResponse(w, http.StatusNotFound, ErrorBody{Error: "exercise not found", Kind: planner.KindNotFound})
		return
	}
	s.jsonResponse(w, http.StatusOK, exercise)
}
