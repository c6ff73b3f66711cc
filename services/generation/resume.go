package generation

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/VarozXYZ/didactio/models"
)

// ResumeCourse restarts generation for every module of the course that is
// not completed. When nothing is missing it just settles the course into
// ready and clears any stale error. Otherwise it flips the course back to
// generating_content and enqueues the regeneration, which fills the gaps in
// plan order with the same prior-summary context a fresh run would have had.
func (s *Service) ResumeCourse(courseID int, provider string) (*models.Course, error) {
	log.Printf("[INFO] Resuming course %d", courseID)

	course, err := s.repo.GetCourseByID(courseID)
	if err != nil {
		log.Printf("[ERROR] Failed to load course %d for resume: %v", courseID, err)
		return nil, err
	}
	if course.Syllabus == nil {
		return nil, fmt.Errorf("course %d has no syllabus to resume from", courseID)
	}

	if provider != "" {
		client, err := s.clients.ClientFor(provider)
		if err != nil {
			return nil, err
		}
		course.Provider = client.Name()
	}

	normalizeProgress(course)
	missing := missingModuleIndices(course)

	generation, err := s.repo.AcquireGeneration(courseID)
	if err != nil {
		log.Printf("[ERROR] Cannot acquire write lease for course %d: %v", courseID, err)
		return nil, err
	}
	course.Generation = generation

	if len(missing) == 0 {
		log.Printf("[INFO] Course %d has no missing modules, marking it ready", courseID)
		course.Status = models.CourseStatusReady
		course.ErrorMessage = ""
		if err := s.saveCourse(course); err != nil {
			return nil, err
		}
		return course, nil
	}

	log.Printf("[INFO] Course %d is missing %d of %d modules", courseID, len(missing), len(course.Syllabus.Modules))
	course.Status = models.CourseStatusGeneratingContent
	course.ErrorMessage = ""
	if err := s.saveCourse(course); err != nil {
		return nil, err
	}

	generationToken := course.Generation
	s.worker.Enqueue(courseID, "resume", func(ctx context.Context) error {
		return s.runResume(ctx, courseID, generationToken, missing)
	})
	return course, nil
}

// missingModuleIndices returns the plan indices without a completed module,
// in ascending order. The course progress must already be normalized.
func missingModuleIndices(course *models.Course) []int {
	return lo.Filter(lo.Range(len(course.Syllabus.Modules)), func(index int, _ int) bool {
		return course.ModuleProgress[index] != models.ModuleProgressCompleted
	})
}

// normalizeProgress pads the progress and summary arrays up to the plan
// length, so courses stored before a crash mid-syllabus still resume.
func normalizeProgress(course *models.Course) {
	planCount := len(course.Syllabus.Modules)
	for len(course.ModuleProgress) < planCount {
		course.ModuleProgress = append(course.ModuleProgress, models.ModuleProgressPending)
	}
	for len(course.IterationSummaries) < planCount {
		course.IterationSummaries = append(course.IterationSummaries, "")
	}
}
