package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/services"
)

type CourseStoreHandler struct {
	service *services.CourseStoreService
}

func NewCourseStoreHandler(service *services.CourseStoreService) *CourseStoreHandler {
	return &CourseStoreHandler{service: service}
}

func (h *CourseStoreHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/courses", h.GetAllCourses).Methods("GET")
	router.HandleFunc("/courses/{id:[0-9]+}", h.GetCourseByID).Methods("GET")
	router.HandleFunc("/courses/{id:[0-9]+}/status", h.GetCourseStatus).Methods("GET")
	router.HandleFunc("/courses/{id:[0-9]+}", h.DeleteCourse).Methods("DELETE")
}

func (h *CourseStoreHandler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	courses, err := h.service.SearchCourses(query)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve courses")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, courses)
}

func (h *CourseStoreHandler) GetCourseByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	course, err := h.service.GetCourseByID(id)
	if err != nil {
		if errors.Is(err, db.ErrCourseNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve course")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, course)
}

func (h *CourseStoreHandler) GetCourseStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	status, err := h.service.GetCourseStatus(id)
	if err != nil {
		if errors.Is(err, db.ErrCourseNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve course status")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, status)
}

func (h *CourseStoreHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrCourseNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete course")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseStoreHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *CourseStoreHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
