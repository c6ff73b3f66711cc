package generation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/VarozXYZ/didactio/models"
)

var validLevels = []string{"beginner", "intermediate", "advanced"}

var validLengths = []string{
	models.CourseLengthShort,
	models.CourseLengthMedium,
	models.CourseLengthLong,
}

// CreateCourse persists a draft course and enqueues its generation. It
// returns as soon as the course exists; the pipeline reports its outcome
// through the course status.
func (s *Service) CreateCourse(req *models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validateCreateRequest(req); err != nil {
		log.Printf("[ERROR] Course creation rejected: %v", err)
		return nil, err
	}
	log.Printf("[INFO] Creating course for topic %q", req.Topic)

	client, err := s.clients.ClientFor(req.Provider)
	if err != nil {
		log.Printf("[ERROR] Course creation failed: %v", err)
		return nil, err
	}

	course := &models.Course{
		Status:   models.CourseStatusDraft,
		Provider: client.Name(),
		Config: models.GenerationConfig{
			Level:                   defaultString(req.Level, "beginner"),
			Length:                  defaultString(req.Length, models.CourseLengthMedium),
			Tone:                    strings.TrimSpace(req.Tone),
			Technicality:            strings.TrimSpace(req.Technicality),
			Language:                defaultString(req.Language, "English"),
			AdditionalContext:       strings.TrimSpace(req.AdditionalContext),
			MinLessonsPerModule:     req.MinLessonsPerModule,
			MaxTotalDurationMinutes: req.MaxTotalDurationMinutes,
		},
		OriginalPrompt:     strings.TrimSpace(req.Topic),
		Modules:            []models.CourseModule{},
		IterationSummaries: []string{},
		ModuleProgress:     []string{},
	}

	if err := s.repo.CreateCourse(course); err != nil {
		log.Printf("[ERROR] Failed to store new course: %v", err)
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	courseID := course.ID
	s.worker.Enqueue(courseID, "generate", func(ctx context.Context) error {
		return s.runGeneration(ctx, courseID)
	})

	log.Printf("[INFO] Successfully created course %d, generation enqueued", course.ID)
	return course, nil
}

func (s *Service) validateCreateRequest(req *models.CreateCourseRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if req.Level != "" && !lo.Contains(validLevels, req.Level) {
		return fmt.Errorf("level must be one of: %s", strings.Join(validLevels, ", "))
	}
	if req.Length != "" && !lo.Contains(validLengths, req.Length) {
		return fmt.Errorf("length must be one of: %s", strings.Join(validLengths, ", "))
	}
	if req.MinLessonsPerModule < 0 {
		return fmt.Errorf("min_lessons_per_module cannot be negative")
	}
	if req.MaxTotalDurationMinutes < 0 {
		return fmt.Errorf("max_total_duration_minutes cannot be negative")
	}
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
