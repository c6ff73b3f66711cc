package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

// runGeneration walks a freshly created course through the whole pipeline:
// filtering_prompt, generating_syllabus, generating_content, then ready or
// error. It acquires the write lease first, so any older run still holding
// the course stops at its next save.
func (s *Service) runGeneration(ctx context.Context, courseID int) error {
	course, err := s.repo.GetCourseByID(courseID)
	if err != nil {
		log.Printf("[ERROR] Cannot load course %d for generation: %v", courseID, err)
		return err
	}

	generation, err := s.repo.AcquireGeneration(courseID)
	if err != nil {
		log.Printf("[ERROR] Cannot acquire write lease for course %d: %v", courseID, err)
		return err
	}
	course.Generation = generation

	defer s.recoverRun(course)

	client, err := s.clients.ClientFor(course.Provider)
	if err != nil {
		return s.failCourse(course, fmt.Errorf("cannot resolve generation provider: %w", err))
	}

	course.Status = models.CourseStatusFilteringPrompt
	if err := s.saveCourse(course); err != nil {
		return err
	}

	decision, err := s.qualifyPrompt(ctx, client, course)
	if err != nil {
		return s.failCourse(course, fmt.Errorf("prompt qualification failed: %w", err))
	}
	if !decision.Valid {
		log.Printf("[INFO] Prompt for course %d rejected: %s", course.ID, decision.RejectionReason)
		return s.failCourse(course, errors.New(decision.RejectionReason))
	}

	course.ImprovedPrompt = decision.ImprovedPrompt
	course.Status = models.CourseStatusGeneratingSyllabus
	if err := s.saveCourse(course); err != nil {
		return err
	}

	syllabus, err := s.generateSyllabus(ctx, client, course)
	if err != nil {
		return s.failCourse(course, err)
	}

	course.Syllabus = syllabus
	course.Modules = make([]models.CourseModule, 0, len(syllabus.Modules))
	course.IterationSummaries = make([]string, len(syllabus.Modules))
	course.ModuleProgress = make([]string, len(syllabus.Modules))
	for i := range course.ModuleProgress {
		course.ModuleProgress[i] = models.ModuleProgressPending
	}
	course.Status = models.CourseStatusGeneratingContent
	if err := s.saveCourse(course); err != nil {
		return err
	}
	log.Printf("[INFO] Course %d syllabus ready: %q with %d modules", course.ID, syllabus.Title, len(syllabus.Modules))

	failures, err := s.generateModules(ctx, client, course, lo.Range(len(syllabus.Modules)))
	if err != nil {
		return err
	}
	return s.finalizeCourse(ctx, course, failures)
}

// runResume regenerates the given plan indices under an already acquired
// write lease. It backs both the resume entry point and the downstream
// rebuild after a regeneration.
func (s *Service) runResume(ctx context.Context, courseID, generation int, indices []int) error {
	course, err := s.repo.GetCourseByID(courseID)
	if err != nil {
		log.Printf("[ERROR] Cannot load course %d for resume: %v", courseID, err)
		return err
	}
	course.Generation = generation

	defer s.recoverRun(course)

	client, err := s.clients.ClientFor(course.Provider)
	if err != nil {
		return s.failCourse(course, fmt.Errorf("cannot resolve generation provider: %w", err))
	}

	failures, err := s.generateModules(ctx, client, course, indices)
	if err != nil {
		return err
	}
	return s.finalizeCourse(ctx, course, failures)
}

// generateModules works through the given plan indices in order, persisting
// the course after every module so progress survives a crash. Failures are
// collected per module and reported with 1-based positions; only a lost
// write lease or a repository error aborts the loop.
func (s *Service) generateModules(ctx context.Context, client llm.Client, course *models.Course, indices []int) ([]string, error) {
	failures := []string{}
	for _, index := range indices {
		moduleTitle := course.Syllabus.Modules[index].Title
		content, summary, err := s.generateModule(ctx, client, course, course.Syllabus, index)
		if err != nil {
			log.Printf("[ERROR] Module %d (%s) of course %d failed: %v", index+1, moduleTitle, course.ID, err)
			failures = append(failures, fmt.Sprintf("Module %d (%s): %v", index+1, moduleTitle, err))
			course.ModuleProgress[index] = models.ModuleProgressFailed
		} else {
			s.applyModuleResult(course, index, content, summary)
		}
		if err := s.saveCourse(course); err != nil {
			return failures, err
		}
	}
	return failures, nil
}

// applyModuleResult records a generated module on the course, replacing any
// earlier realization of the same plan index and keeping the realized
// modules sorted in plan order.
func (s *Service) applyModuleResult(course *models.Course, planIndex int, content, summary string) {
	planned := course.Syllabus.Modules[planIndex]
	realized := models.CourseModule{
		PlanIndex:   planIndex,
		Title:       planned.Title,
		Overview:    planned.Overview,
		Content:     content,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}

	replaced := false
	for i := range course.Modules {
		if course.Modules[i].PlanIndex == planIndex {
			course.Modules[i] = realized
			replaced = true
			break
		}
	}
	if !replaced {
		course.Modules = append(course.Modules, realized)
	}
	slices.SortFunc(course.Modules, func(a, b models.CourseModule) int {
		return a.PlanIndex - b.PlanIndex
	})

	course.IterationSummaries[planIndex] = summary
	course.ModuleProgress[planIndex] = models.ModuleProgressCompleted
}

// finalizeCourse maps the collected module failures onto the final status:
// no completed module means error, a partial result is still ready but keeps
// the failure list as its error message, a clean run clears it.
func (s *Service) finalizeCourse(ctx context.Context, course *models.Course, failures []string) error {
	completed := lo.Count(course.ModuleProgress, models.ModuleProgressCompleted)
	switch {
	case completed == 0:
		course.Status = models.CourseStatusError
		course.ErrorMessage = strings.Join(failures, "; ")
	case len(failures) > 0:
		course.Status = models.CourseStatusReady
		course.ErrorMessage = strings.Join(failures, "; ")
	default:
		course.Status = models.CourseStatusReady
		course.ErrorMessage = ""
	}

	if err := s.saveCourse(course); err != nil {
		return err
	}
	log.Printf("[INFO] Course %d finished with status %s (%d/%d modules)", course.ID, course.Status, completed, len(course.ModuleProgress))

	if course.Status == models.CourseStatusReady && s.indexer != nil {
		if err := s.indexer.IndexCourse(ctx, course); err != nil {
			log.Printf("[WARN] Failed to index course %d for search: %v", course.ID, err)
		}
	}
	return nil
}

// failCourse records a fatal pipeline error and moves the course to the
// error status. It returns the cause so callers can end the run with it.
func (s *Service) failCourse(course *models.Course, cause error) error {
	log.Printf("[ERROR] Course %d failed: %v", course.ID, cause)
	course.Status = models.CourseStatusError
	course.ErrorMessage = cause.Error()
	if err := s.saveCourse(course); err != nil {
		return err
	}
	return cause
}

// saveCourse persists the course under its write lease. A stale generation
// means a newer run took over the course, the caller must stop without
// touching the state any further.
func (s *Service) saveCourse(course *models.Course) error {
	err := s.repo.UpdateCourse(course)
	if errors.Is(err, db.ErrStaleGeneration) {
		log.Printf("[WARN] Course %d: write lease lost, aborting run", course.ID)
		return err
	}
	if err != nil {
		log.Printf("[ERROR] Failed to save course %d: %v", course.ID, err)
		return err
	}
	return nil
}

// recoverRun converts a panic anywhere in a pipeline run into an error
// status instead of letting the course hang in a generating state.
func (s *Service) recoverRun(course *models.Course) {
	if r := recover(); r != nil {
		log.Printf("[ERROR] Generation for course %d panicked: %v", course.ID, r)
		course.Status = models.CourseStatusError
		course.ErrorMessage = fmt.Sprintf("internal error: %v", r)
		if err := s.saveCourse(course); err != nil {
			log.Printf("[ERROR] Failed to record panic for course %d: %v", course.ID, err)
		}
	}
}
