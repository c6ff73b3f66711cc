package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
)

// CourseIndexRemover removes a deleted course from the semantic search
// index. Removal is best effort; a failure is logged and swallowed.
type CourseIndexRemover interface {
	RemoveCourse(ctx context.Context, courseID int) error
}

type CourseStoreService struct {
	repo    db.CourseRepository
	remover CourseIndexRemover
}

// NewCourseStoreService creates a course store service. remover may be nil
// when semantic search is not configured.
func NewCourseStoreService(repo db.CourseRepository, remover CourseIndexRemover) *CourseStoreService {
	return &CourseStoreService{
		repo:    repo,
		remover: remover,
	}
}

func (s *CourseStoreService) GetCourseByID(id int) (*models.Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid course ID: %d", id)
	}
	return s.repo.GetCourseByID(id)
}

func (s *CourseStoreService) GetAllCourses() ([]*models.Course, error) {
	courses, err := s.repo.GetAllCourses()
	if err != nil {
		log.Printf("[ERROR] Failed to load courses: %v", err)
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	return courses, nil
}

// SearchCourses fuzzy-matches the query against the original prompt and the
// syllabus title, topic and keywords. An empty query returns all courses.
func (s *CourseStoreService) SearchCourses(query string) ([]*models.Course, error) {
	courses, err := s.GetAllCourses()
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return courses, nil
	}

	matches := lo.Filter(courses, func(course *models.Course, _ int) bool {
		if fuzzy.MatchFold(query, course.OriginalPrompt) {
			return true
		}
		if course.Syllabus == nil {
			return false
		}
		return fuzzy.MatchFold(query, course.Syllabus.Title) ||
			fuzzy.MatchFold(query, course.Syllabus.Topic) ||
			fuzzy.MatchFold(query, course.Syllabus.Keywords)
	})

	log.Printf("[INFO] Course search for %q matched %d of %d courses", query, len(matches), len(courses))
	return matches, nil
}

// GetCourseStatus reports the pipeline progress of one course: its status,
// its error message if any, and the module counts derived from the
// per-plan-index progress markers.
func (s *CourseStoreService) GetCourseStatus(id int) (*models.CourseStatusResponse, error) {
	course, err := s.GetCourseByID(id)
	if err != nil {
		return nil, err
	}

	planned := 0
	if course.Syllabus != nil {
		planned = len(course.Syllabus.Modules)
	}
	return &models.CourseStatusResponse{
		ID:               course.ID,
		Status:           course.Status,
		ErrorMessage:     course.ErrorMessage,
		PlannedModules:   planned,
		CompletedModules: lo.Count(course.ModuleProgress, models.ModuleProgressCompleted),
		FailedModules:    lo.Count(course.ModuleProgress, models.ModuleProgressFailed),
		UpdatedAt:        course.UpdatedAt,
	}, nil
}

func (s *CourseStoreService) DeleteCourse(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid course ID: %d", id)
	}
	if err := s.repo.DeleteCourse(id); err != nil {
		log.Printf("[ERROR] Failed to delete course %d: %v", id, err)
		return err
	}
	if s.remover != nil {
		if err := s.remover.RemoveCourse(ctx, id); err != nil {
			log.Printf("[WARN] Failed to remove course %d from the search index: %v", id, err)
		}
	}
	log.Printf("[INFO] Successfully deleted course %d", id)
	return nil
}
