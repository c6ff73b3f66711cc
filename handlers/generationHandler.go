package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/generation"
)

type GenerationHandler struct {
	service *generation.Service
}

func NewGenerationHandler(service *generation.Service) *GenerationHandler {
	return &GenerationHandler{service: service}
}

func (h *GenerationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/courses", h.CreateCourse).Methods("POST")
	router.HandleFunc("/courses/{id:[0-9]+}/regenerate", h.RegenerateModule).Methods("POST")
	router.HandleFunc("/courses/{id:[0-9]+}/resume", h.ResumeCourse).Methods("POST")
}

func (h *GenerationHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received course creation request")

	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode course creation request: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	course, err := h.service.CreateCourse(&req)
	if err != nil {
		if strings.HasPrefix(err.Error(), "failed to create course") {
			h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, course)
}

func (h *GenerationHandler) RegenerateModule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	var req models.RegenerateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.ModuleIndex == nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "module_index is required")
		return
	}

	course, err := h.service.RegenerateModule(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, course)
}

func (h *GenerationHandler) ResumeCourse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	// Resume takes an optional body, an empty one is fine.
	var req models.ResumeCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	course, err := h.service.ResumeCourse(id, req.Provider)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusAccepted, course)
}

// writeServiceError maps a generation service error onto a status code: the
// repository sentinels get their own codes, request-shaped problems are 400,
// everything else is a 500 carrying the error text.
func (h *GenerationHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrCourseNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrStaleGeneration):
		h.writeErrorResponse(w, http.StatusConflict, "Course is being modified by another operation, try again")
	case isRequestProblem(err.Error()):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

func isRequestProblem(message string) bool {
	return strings.Contains(message, "out of range") ||
		strings.Contains(message, "is required") ||
		strings.Contains(message, "has no syllabus") ||
		strings.Contains(message, "unknown generation provider")
}

func (h *GenerationHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *GenerationHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
