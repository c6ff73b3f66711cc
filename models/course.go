package models

import "time"

// Course lifecycle states. A course enters draft on creation, walks the
// generation states in order, and terminates in ready or error. Error is
// recoverable through resume; ready courses can still have single modules
// regenerated.
const (
	CourseStatusDraft              = "draft"
	CourseStatusFilteringPrompt    = "filtering_prompt"
	CourseStatusGeneratingSyllabus = "generating_syllabus"
	CourseStatusGeneratingContent  = "generating_content"
	CourseStatusReady              = "ready"
	CourseStatusError              = "error"
)

// Per-plan-index progress markers, index-aligned with Syllabus.Modules.
const (
	ModuleProgressPending   = "pending"
	ModuleProgressCompleted = "completed"
	ModuleProgressFailed    = "failed"
)

// Content length presets; each maps to a token budget for module generation.
const (
	CourseLengthShort  = "short"
	CourseLengthMedium = "medium"
	CourseLengthLong   = "long"
)

type Course struct {
	ID                 int              `json:"id"`
	Status             string           `json:"status"`
	Provider           string           `json:"provider"`
	Config             GenerationConfig `json:"config"`
	OriginalPrompt     string           `json:"original_prompt"`
	ImprovedPrompt     string           `json:"improved_prompt,omitempty"`
	Syllabus           *Syllabus        `json:"syllabus,omitempty"`
	Modules            []CourseModule   `json:"modules"`
	IterationSummaries []string         `json:"iteration_summaries"`
	ModuleProgress     []string         `json:"module_progress"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	Generation         int              `json:"generation"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// GenerationConfig holds the immutable style inputs applied to every
// generation call for a course.
type GenerationConfig struct {
	Level                   string `json:"level"`
	Length                  string `json:"length"`
	Tone                    string `json:"tone,omitempty"`
	Technicality            string `json:"technicality,omitempty"`
	Language                string `json:"language"`
	AdditionalContext       string `json:"additional_context,omitempty"`
	MinLessonsPerModule     int    `json:"min_lessons_per_module,omitempty"`
	MaxTotalDurationMinutes int    `json:"max_total_duration_minutes,omitempty"`
}

type Syllabus struct {
	Topic                string           `json:"topic" jsonschema:"required,description=The validated topic this course teaches"`
	Title                string           `json:"title" jsonschema:"required,description=Human-readable course title"`
	Keywords             string           `json:"keywords" jsonschema:"required,description=Comma-separated keywords describing the course"`
	Description          string           `json:"description" jsonschema:"required,description=Short description of what the course covers and who it is for"`
	TotalDurationMinutes int              `json:"total_duration_minutes" jsonschema:"required,description=Total estimated duration of the course in whole minutes"`
	Modules              []SyllabusModule `json:"modules" jsonschema:"required,description=Ordered list of planned course modules"`
}

type SyllabusModule struct {
	Title                    string   `json:"title" jsonschema:"required,description=Module title"`
	Overview                 string   `json:"overview,omitempty" jsonschema:"description=One or two sentences on what the module covers"`
	EstimatedDurationMinutes int      `json:"estimated_duration_minutes,omitempty" jsonschema:"description=Estimated module duration in whole minutes"`
	Lessons                  []Lesson `json:"lessons" jsonschema:"required,description=Ordered lessons inside the module"`
}

type Lesson struct {
	Title          string   `json:"title" jsonschema:"required,description=Lesson title"`
	ContentOutline []string `json:"content_outline" jsonschema:"required,description=Ordered outline bullets the lesson must cover"`
}

// CourseModule is a realized module: the plan module at PlanIndex plus its
// generated long-form content and condensed summary.
type CourseModule struct {
	PlanIndex   int       `json:"plan_index"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview,omitempty"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

type CreateCourseRequest struct {
	Topic                   string `json:"topic"`
	Level                   string `json:"level,omitempty"`
	Provider                string `json:"provider,omitempty"`
	Length                  string `json:"length,omitempty"`
	Tone                    string `json:"tone,omitempty"`
	Technicality            string `json:"technicality,omitempty"`
	Language                string `json:"language,omitempty"`
	AdditionalContext       string `json:"additional_context,omitempty"`
	MinLessonsPerModule     int    `json:"min_lessons_per_module,omitempty"`
	MaxTotalDurationMinutes int    `json:"max_total_duration_minutes,omitempty"`
}

type RegenerateModuleRequest struct {
	ModuleIndex *int   `json:"module_index"`
	UserContext string `json:"user_context,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

type ResumeCourseRequest struct {
	Provider string `json:"provider,omitempty"`
}

type CourseStatusResponse struct {
	ID               int       `json:"id"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	PlannedModules   int       `json:"planned_modules"`
	CompletedModules int       `json:"completed_modules"`
	FailedModules    int       `json:"failed_modules"`
	UpdatedAt        time.Time `json:"updated_at"`
}
