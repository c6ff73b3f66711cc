package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
)

type stubCourseRepository struct {
	courses  []*models.Course
	failWith error
	deleted  []int
}

func (s *stubCourseRepository) CreateCourse(course *models.Course) error {
	return s.failWith
}

func (s *stubCourseRepository) GetCourseByID(id int) (*models.Course, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, course := range s.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return nil, fmt.Errorf("course with id %d: %w", id, db.ErrCourseNotFound)
}

func (s *stubCourseRepository) GetAllCourses() ([]*models.Course, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.courses, nil
}

func (s *stubCourseRepository) UpdateCourse(course *models.Course) error {
	return s.failWith
}

func (s *stubCourseRepository) AcquireGeneration(id int) (int, error) {
	return 0, s.failWith
}

func (s *stubCourseRepository) DeleteCourse(id int) error {
	if s.failWith != nil {
		return s.failWith
	}
	for i, course := range s.courses {
		if course.ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return fmt.Errorf("course with id %d: %w", id, db.ErrCourseNotFound)
}

func (s *stubCourseRepository) Close() error {
	return nil
}

type stubRemover struct {
	removed  []int
	failWith error
}

func (s *stubRemover) RemoveCourse(ctx context.Context, courseID int) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.removed = append(s.removed, courseID)
	return nil
}

func searchCatalog() []*models.Course {
	return []*models.Course{
		{
			ID:             1,
			Status:         models.CourseStatusReady,
			OriginalPrompt: "teach me rust ownership",
			Syllabus: &models.Syllabus{
				Topic:    "Rust Ownership",
				Title:    "Understanding Ownership in Rust",
				Keywords: "rust, ownership, borrowing",
			},
		},
		{
			ID:             2,
			Status:         models.CourseStatusReady,
			OriginalPrompt: "goroutines and channels",
			Syllabus: &models.Syllabus{
				Topic:    "Go Concurrency",
				Title:    "Concurrent Programming in Go",
				Keywords: "go, goroutines, channels",
			},
		},
		{
			// Rejected at qualification, never got a syllabus.
			ID:             3,
			Status:         models.CourseStatusError,
			OriginalPrompt: "intro to sourdough baking",
		},
	}
}

func TestSearchCourses(t *testing.T) {
	service := NewCourseStoreService(&stubCourseRepository{courses: searchCatalog()}, nil)

	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{
			name:    "empty query returns everything",
			query:   "",
			wantIDs: []int{1, 2, 3},
		},
		{
			name:    "whitespace query returns everything",
			query:   "   ",
			wantIDs: []int{1, 2, 3},
		},
		{
			name:    "tolerates typos in the title",
			query:   "concurent",
			wantIDs: []int{2},
		},
		{
			name:    "matches the topic case-insensitively",
			query:   "RUST",
			wantIDs: []int{1},
		},
		{
			name:    "matches keywords",
			query:   "borrowing",
			wantIDs: []int{1},
		},
		{
			name:    "falls back to the original prompt without a syllabus",
			query:   "sourdough",
			wantIDs: []int{3},
		},
		{
			name:    "no matches",
			query:   "quantum knitting",
			wantIDs: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := service.SearchCourses(tt.query)
			if err != nil {
				t.Fatalf("SearchCourses(%q) failed: %v", tt.query, err)
			}
			gotIDs := make([]int, 0, len(courses))
			for _, course := range courses {
				gotIDs = append(gotIDs, course.ID)
			}
			if !slices.Equal(gotIDs, tt.wantIDs) {
				t.Errorf("SearchCourses(%q) matched %v, want %v", tt.query, gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestGetCourseByID(t *testing.T) {
	service := NewCourseStoreService(&stubCourseRepository{courses: searchCatalog()}, nil)

	t.Run("found", func(t *testing.T) {
		course, err := service.GetCourseByID(2)
		if err != nil {
			t.Fatalf("GetCourseByID failed: %v", err)
		}
		if course.ID != 2 {
			t.Errorf("got course %d, want 2", course.ID)
		}
	})

	t.Run("rejects non-positive IDs", func(t *testing.T) {
		for _, id := range []int{0, -4} {
			if _, err := service.GetCourseByID(id); err == nil {
				t.Errorf("GetCourseByID(%d) should fail", id)
			}
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.GetCourseByID(42)
		if !errors.Is(err, db.ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", err)
		}
	})
}

func TestGetAllCoursesWrapsRepositoryErrors(t *testing.T) {
	errDown := errors.New("connection refused")
	service := NewCourseStoreService(&stubCourseRepository{failWith: errDown}, nil)

	_, err := service.GetAllCourses()
	if !errors.Is(err, errDown) {
		t.Fatalf("expected the repository error to be wrapped, got %v", err)
	}
}

func TestGetCourseStatus(t *testing.T) {
	course := &models.Course{
		ID:           7,
		Status:       models.CourseStatusReady,
		ErrorMessage: "Module 2 (Concurrency Patterns): content generation failed: model overloaded",
		Syllabus: &models.Syllabus{
			Modules: []models.SyllabusModule{{Title: "One"}, {Title: "Two"}, {Title: "Three"}},
		},
		ModuleProgress: []string{
			models.ModuleProgressCompleted,
			models.ModuleProgressFailed,
			models.ModuleProgressPending,
		},
	}
	service := NewCourseStoreService(&stubCourseRepository{courses: []*models.Course{course}}, nil)

	status, err := service.GetCourseStatus(7)
	if err != nil {
		t.Fatalf("GetCourseStatus failed: %v", err)
	}
	if status.ID != 7 || status.Status != models.CourseStatusReady {
		t.Errorf("unexpected identity: %+v", status)
	}
	if status.PlannedModules != 3 {
		t.Errorf("planned = %d, want 3", status.PlannedModules)
	}
	if status.CompletedModules != 1 {
		t.Errorf("completed = %d, want 1", status.CompletedModules)
	}
	if status.FailedModules != 1 {
		t.Errorf("failed = %d, want 1", status.FailedModules)
	}
	if status.ErrorMessage != course.ErrorMessage {
		t.Errorf("error message %q, want %q", status.ErrorMessage, course.ErrorMessage)
	}
}

func TestGetCourseStatusBeforeSyllabus(t *testing.T) {
	course := &models.Course{ID: 4, Status: models.CourseStatusFilteringPrompt}
	service := NewCourseStoreService(&stubCourseRepository{courses: []*models.Course{course}}, nil)

	status, err := service.GetCourseStatus(4)
	if err != nil {
		t.Fatalf("GetCourseStatus failed: %v", err)
	}
	if status.PlannedModules != 0 || status.CompletedModules != 0 || status.FailedModules != 0 {
		t.Errorf("expected zero module counts before a syllabus exists, got %+v", status)
	}
}

func TestDeleteCourse(t *testing.T) {
	repo := &stubCourseRepository{courses: searchCatalog()}
	remover := &stubRemover{}
	service := NewCourseStoreService(repo, remover)

	if err := service.DeleteCourse(context.Background(), 2); err != nil {
		t.Fatalf("DeleteCourse failed: %v", err)
	}
	if !slices.Equal(repo.deleted, []int{2}) {
		t.Errorf("repository deletions = %v, want [2]", repo.deleted)
	}
	if !slices.Equal(remover.removed, []int{2}) {
		t.Errorf("index removals = %v, want [2]", remover.removed)
	}
}

func TestDeleteCourseToleratesIndexFailure(t *testing.T) {
	repo := &stubCourseRepository{courses: searchCatalog()}
	remover := &stubRemover{failWith: errors.New("pinecone unreachable")}
	service := NewCourseStoreService(repo, remover)

	if err := service.DeleteCourse(context.Background(), 1); err != nil {
		t.Fatalf("index removal is best effort, delete should still succeed: %v", err)
	}
	if !slices.Equal(repo.deleted, []int{1}) {
		t.Errorf("repository deletions = %v, want [1]", repo.deleted)
	}
}

func TestDeleteCourseWithoutRemover(t *testing.T) {
	repo := &stubCourseRepository{courses: searchCatalog()}
	service := NewCourseStoreService(repo, nil)

	if err := service.DeleteCourse(context.Background(), 3); err != nil {
		t.Fatalf("DeleteCourse without a search index failed: %v", err)
	}
}

func TestDeleteCourseErrors(t *testing.T) {
	repo := &stubCourseRepository{courses: searchCatalog()}
	remover := &stubRemover{}
	service := NewCourseStoreService(repo, remover)

	t.Run("unknown course", func(t *testing.T) {
		err := service.DeleteCourse(context.Background(), 99)
		if !errors.Is(err, db.ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", err)
		}
		if len(remover.removed) != 0 {
			t.Errorf("index removal should not run after a failed delete, got %v", remover.removed)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		if err := service.DeleteCourse(context.Background(), 0); err == nil {
			t.Error("DeleteCourse(0) should fail")
		}
		if len(repo.deleted) != 0 {
			t.Errorf("nothing should have been deleted, got %v", repo.deleted)
		}
	})
}

func BenchmarkSearchCourses(b *testing.B) {
	courses := make([]*models.Course, 0, 200)
	for i := 0; i < 200; i++ {
		courses = append(courses, &models.Course{
			ID:             i + 1,
			OriginalPrompt: fmt.Sprintf("course request %d", i),
			Syllabus: &models.Syllabus{
				Topic:    "Distributed Systems",
				Title:    fmt.Sprintf("Distributed Systems %d", i),
				Keywords: "consensus, replication, sharding",
			},
		})
	}
	service := NewCourseStoreService(&stubCourseRepository{courses: courses}, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.SearchCourses("replication"); err != nil {
			b.Fatal(err)
		}
	}
}
