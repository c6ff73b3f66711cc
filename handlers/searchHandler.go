package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/VarozXYZ/didactio/models"
)

// CourseSearcher answers semantic queries against the course index.
type CourseSearcher interface {
	SearchCourses(ctx context.Context, query string, topK int) ([]models.CourseSearchResult, error)
}

type SearchHandler struct {
	searcher CourseSearcher
}

// NewSearchHandler creates the semantic search handler. searcher may be nil
// when the course index is not configured; the routes then answer 503.
func NewSearchHandler(searcher CourseSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/search/courses", h.SearchCourses).Methods("GET")
}

func (h *SearchHandler) SearchCourses(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		h.writeErrorResponse(w, http.StatusServiceUnavailable, "Semantic search is not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := 10
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	results, err := h.searcher.SearchCourses(r.Context(), query, limit)
	if err != nil {
		log.Printf("[ERROR] Semantic course search failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Search failed")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.CourseSearchResponse{
		Query:   query,
		Results: results,
	})
}

func (h *SearchHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *SearchHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
