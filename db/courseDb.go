package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VarozXYZ/didactio/models"

	_ "github.com/lib/pq"
)

var (
	ErrCourseNotFound = errors.New("course not found")

	// ErrStaleGeneration means the caller tried to persist a course while
	// holding a generation token that a newer writer has since advanced.
	// The losing write-series must stop without touching the course.
	ErrStaleGeneration = errors.New("stale course generation token")
)

type CourseRepository interface {
	CreateCourse(course *models.Course) error
	GetCourseByID(id int) (*models.Course, error)
	GetAllCourses() ([]*models.Course, error)
	UpdateCourse(course *models.Course) error
	AcquireGeneration(id int) (int, error)
	DeleteCourse(id int) error
	Close() error
}

type PostgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(databaseURL string) (*PostgresCourseRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCourseRepository{db: db}, nil
}

func (r *PostgresCourseRepository) CreateCourse(course *models.Course) error {
	configJSON, err := json.Marshal(course.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	modulesJSON, err := json.Marshal(course.Modules)
	if err != nil {
		return fmt.Errorf("failed to marshal modules: %w", err)
	}
	summariesJSON, err := json.Marshal(course.IterationSummaries)
	if err != nil {
		return fmt.Errorf("failed to marshal iteration summaries: %w", err)
	}
	progressJSON, err := json.Marshal(course.ModuleProgress)
	if err != nil {
		return fmt.Errorf("failed to marshal module progress: %w", err)
	}
	syllabusJSON, err := marshalSyllabus(course.Syllabus)
	if err != nil {
		return fmt.Errorf("failed to marshal syllabus: %w", err)
	}

	query := `
		INSERT INTO didactio.courses
			(status, provider, config, original_prompt, improved_prompt,
			 syllabus, modules, iteration_summaries, module_progress,
			 error_message, generation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
		RETURNING id, generation, createdAt, updatedAt`

	row := r.db.QueryRow(query,
		course.Status, course.Provider, configJSON, course.OriginalPrompt,
		course.ImprovedPrompt, syllabusJSON, modulesJSON,
		summariesJSON, progressJSON, course.ErrorMessage)

	if err := row.Scan(&course.ID, &course.Generation, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func (r *PostgresCourseRepository) GetCourseByID(id int) (*models.Course, error) {
	query := `
		SELECT id, status, provider, config, original_prompt, improved_prompt,
		       syllabus, modules, iteration_summaries, module_progress,
		       error_message, generation, createdAt, updatedAt
		FROM didactio.courses
		WHERE id = $1`

	course, err := scanCourse(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course with id %d: %w", id, ErrCourseNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}

func (r *PostgresCourseRepository) GetAllCourses() ([]*models.Course, error) {
	query := `
		SELECT id, status, provider, config, original_prompt, improved_prompt,
		       syllabus, modules, iteration_summaries, module_progress,
		       error_message, generation, createdAt, updatedAt
		FROM didactio.courses
		ORDER BY createdAt DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over courses: %w", err)
	}

	return courses, nil
}

// UpdateCourse persists a full course snapshot. The write only succeeds if
// course.Generation still matches the stored token; otherwise the caller
// lost its single-writer lease and gets ErrStaleGeneration.
func (r *PostgresCourseRepository) UpdateCourse(course *models.Course) error {
	configJSON, err := json.Marshal(course.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	modulesJSON, err := json.Marshal(course.Modules)
	if err != nil {
		return fmt.Errorf("failed to marshal modules: %w", err)
	}
	summariesJSON, err := json.Marshal(course.IterationSummaries)
	if err != nil {
		return fmt.Errorf("failed to marshal iteration summaries: %w", err)
	}
	progressJSON, err := json.Marshal(course.ModuleProgress)
	if err != nil {
		return fmt.Errorf("failed to marshal module progress: %w", err)
	}
	syllabusJSON, err := marshalSyllabus(course.Syllabus)
	if err != nil {
		return fmt.Errorf("failed to marshal syllabus: %w", err)
	}

	query := `
		UPDATE didactio.courses
		SET status = $2, provider = $3, config = $4, original_prompt = $5,
		    improved_prompt = $6, syllabus = $7, modules = $8,
		    iteration_summaries = $9, module_progress = $10,
		    error_message = $11, updatedAt = NOW()
		WHERE id = $1 AND generation = $12
		RETURNING updatedAt`

	row := r.db.QueryRow(query,
		course.ID, course.Status, course.Provider, configJSON,
		course.OriginalPrompt, course.ImprovedPrompt,
		syllabusJSON, modulesJSON, summariesJSON,
		progressJSON, course.ErrorMessage, course.Generation)

	if err := row.Scan(&course.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetCourseByID(course.ID); errors.Is(getErr, ErrCourseNotFound) {
				return fmt.Errorf("course with id %d: %w", course.ID, ErrCourseNotFound)
			}
			return fmt.Errorf("course %d at generation %d: %w", course.ID, course.Generation, ErrStaleGeneration)
		}
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

// AcquireGeneration advances the course's generation token and returns the
// new value. Every write-series must acquire a token before its first save;
// advancing it invalidates any slower writer still holding the old one.
func (r *PostgresCourseRepository) AcquireGeneration(id int) (int, error) {
	query := `
		UPDATE didactio.courses
		SET generation = generation + 1, updatedAt = NOW()
		WHERE id = $1
		RETURNING generation`

	var generation int
	if err := r.db.QueryRow(query, id).Scan(&generation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("course with id %d: %w", id, ErrCourseNotFound)
		}
		return 0, fmt.Errorf("failed to acquire generation token: %w", err)
	}

	return generation, nil
}

func (r *PostgresCourseRepository) DeleteCourse(id int) error {
	query := "DELETE FROM didactio.courses WHERE id = $1"

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course with id %d: %w", id, ErrCourseNotFound)
	}

	return nil
}

func (r *PostgresCourseRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	course := &models.Course{}
	var configJSON, syllabusJSON, modulesJSON, summariesJSON, progressJSON []byte

	err := row.Scan(&course.ID, &course.Status, &course.Provider, &configJSON,
		&course.OriginalPrompt, &course.ImprovedPrompt, &syllabusJSON,
		&modulesJSON, &summariesJSON, &progressJSON, &course.ErrorMessage,
		&course.Generation, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(configJSON, &course.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(syllabusJSON) > 0 {
		course.Syllabus = &models.Syllabus{}
		if err := json.Unmarshal(syllabusJSON, course.Syllabus); err != nil {
			return nil, fmt.Errorf("failed to unmarshal syllabus: %w", err)
		}
	}
	if err := json.Unmarshal(modulesJSON, &course.Modules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal modules: %w", err)
	}
	if err := json.Unmarshal(summariesJSON, &course.IterationSummaries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal iteration summaries: %w", err)
	}
	if err := json.Unmarshal(progressJSON, &course.ModuleProgress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal module progress: %w", err)
	}

	return course, nil
}

// marshalSyllabus keeps an absent syllabus as SQL NULL rather than the JSON
// string "null".
func marshalSyllabus(syllabus *models.Syllabus) (any, error) {
	if syllabus == nil {
		return nil, nil
	}
	return json.Marshal(syllabus)
}
