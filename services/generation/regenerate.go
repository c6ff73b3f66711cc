package generation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/VarozXYZ/didactio/models"
)

// RegenerateModule rebuilds a single module of a finished course, optionally
// steered by extra user context. The call is synchronous and runs on the
// course's worker queue, so it waits for any in-flight generation task. On
// failure the stored course is left untouched. The overall course status is
// not changed by a successful regeneration unless downstream invalidation is
// enabled and there are modules after the regenerated one.
func (s *Service) RegenerateModule(ctx context.Context, courseID int, req *models.RegenerateModuleRequest) (*models.Course, error) {
	if req == nil || req.ModuleIndex == nil {
		return nil, fmt.Errorf("module_index is required")
	}
	moduleIndex := *req.ModuleIndex
	log.Printf("[INFO] Regenerating module %d of course %d", moduleIndex, courseID)

	var result *models.Course
	err := s.worker.Do(ctx, courseID, "regenerate", func(taskCtx context.Context) error {
		course, err := s.repo.GetCourseByID(courseID)
		if err != nil {
			return err
		}
		if course.Syllabus == nil {
			return fmt.Errorf("course %d has no syllabus", courseID)
		}
		if moduleIndex < 0 || moduleIndex >= len(course.Syllabus.Modules) {
			return fmt.Errorf("module index %d out of range for %d planned modules", moduleIndex, len(course.Syllabus.Modules))
		}
		normalizeProgress(course)

		client, err := s.clients.ClientFor(defaultString(req.Provider, course.Provider))
		if err != nil {
			return err
		}

		generation, err := s.repo.AcquireGeneration(courseID)
		if err != nil {
			return err
		}
		course.Generation = generation
		if req.Provider != "" {
			course.Provider = client.Name()
		}

		variant := regenerationSyllabus(course.Syllabus, req.UserContext)
		content, summary, err := s.generateModule(taskCtx, client, course, variant, moduleIndex)
		if err != nil {
			return fmt.Errorf("failed to regenerate module %d: %w", moduleIndex, err)
		}
		s.applyModuleResult(course, moduleIndex, content, summary)

		if s.invalidateDownstream {
			invalidated := invalidateDownstreamModules(course, moduleIndex)
			if len(invalidated) > 0 {
				log.Printf("[INFO] Invalidating %d downstream modules of course %d", len(invalidated), courseID)
				course.Status = models.CourseStatusGeneratingContent
				course.ErrorMessage = ""
				if err := s.saveCourse(course); err != nil {
					return err
				}
				generationToken := course.Generation
				s.worker.Enqueue(courseID, "regenerate-downstream", func(ctx context.Context) error {
					return s.runResume(ctx, courseID, generationToken, invalidated)
				})
				result = course
				return nil
			}
		}

		if err := s.saveCourse(course); err != nil {
			return err
		}
		result = course
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] Module regeneration failed for course %d: %v", courseID, err)
		return nil, err
	}

	log.Printf("[INFO] Successfully regenerated module %d of course %d", moduleIndex, courseID)
	return result, nil
}

// regenerationSyllabus returns a plan variant whose description carries the
// extra user context, so the note reaches the generation prompt without
// touching the persisted syllabus.
func regenerationSyllabus(syllabus *models.Syllabus, userContext string) *models.Syllabus {
	userContext = strings.TrimSpace(userContext)
	if userContext == "" {
		return syllabus
	}
	variant := *syllabus
	variant.Description = syllabus.Description + "\n\nAdditional context for this regeneration: " + userContext
	return &variant
}

// invalidateDownstreamModules discards every realized module after the given
// plan index and returns the indices that now need regeneration.
func invalidateDownstreamModules(course *models.Course, afterIndex int) []int {
	invalidated := []int{}
	for i := afterIndex + 1; i < len(course.Syllabus.Modules); i++ {
		course.ModuleProgress[i] = models.ModuleProgressPending
		course.IterationSummaries[i] = ""
		invalidated = append(invalidated, i)
	}
	if len(invalidated) > 0 {
		course.Modules = lo.Filter(course.Modules, func(module models.CourseModule, _ int) bool {
			return module.PlanIndex <= afterIndex
		})
	}
	return invalidated
}
