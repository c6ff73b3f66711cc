package generation

import (
	"encoding/json"
	"fmt"

	"github.com/VarozXYZ/didactio/models"
)

// parseSyllabus turns the raw model output into a validated syllabus. The
// check runs in two steps, is it JSON at all, then does the JSON have the
// required shape, so the error message tells the caller which of the two
// went wrong.
func parseSyllabus(raw string) (*models.Syllabus, error) {
	var document map[string]any
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return nil, fmt.Errorf("syllabus is not valid JSON: %w", err)
	}
	if err := validateSyllabusDocument(document); err != nil {
		return nil, fmt.Errorf("syllabus failed validation: %w", err)
	}

	var syllabus models.Syllabus
	if err := json.Unmarshal([]byte(raw), &syllabus); err != nil {
		return nil, fmt.Errorf("failed to decode syllabus: %w", err)
	}
	return &syllabus, nil
}

func validateSyllabusDocument(document map[string]any) error {
	for _, field := range []string{"topic", "title", "keywords", "description"} {
		if _, ok := document[field].(string); !ok {
			return fmt.Errorf("missing or invalid %s", field)
		}
	}
	if _, ok := document["total_duration_minutes"].(float64); !ok {
		return fmt.Errorf("missing or invalid total_duration_minutes")
	}

	modules, ok := document["modules"].([]any)
	if !ok {
		return fmt.Errorf("missing or invalid modules")
	}
	if len(modules) == 0 {
		return fmt.Errorf("modules must not be empty")
	}

	for i, rawModule := range modules {
		module, ok := rawModule.(map[string]any)
		if !ok {
			return fmt.Errorf("module %d: not an object", i)
		}
		if err := validateSyllabusModule(module); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}

func validateSyllabusModule(module map[string]any) error {
	if _, ok := module["title"].(string); !ok {
		return fmt.Errorf("missing or invalid title")
	}
	if overview, present := module["overview"]; present {
		if _, ok := overview.(string); !ok {
			return fmt.Errorf("invalid overview")
		}
	}
	if duration, present := module["estimated_duration_minutes"]; present {
		if _, ok := duration.(float64); !ok {
			return fmt.Errorf("invalid estimated_duration_minutes")
		}
	}

	lessons, ok := module["lessons"].([]any)
	if !ok {
		return fmt.Errorf("missing or invalid lessons")
	}
	if len(lessons) == 0 {
		return fmt.Errorf("lessons must not be empty")
	}

	for i, rawLesson := range lessons {
		lesson, ok := rawLesson.(map[string]any)
		if !ok {
			return fmt.Errorf("lesson %d: not an object", i)
		}
		if err := validateSyllabusLesson(lesson); err != nil {
			return fmt.Errorf("lesson %d: %w", i, err)
		}
	}
	return nil
}

func validateSyllabusLesson(lesson map[string]any) error {
	if _, ok := lesson["title"].(string); !ok {
		return fmt.Errorf("missing or invalid title")
	}
	outline, ok := lesson["content_outline"].([]any)
	if !ok {
		return fmt.Errorf("missing or invalid content_outline")
	}
	for i, point := range outline {
		if _, ok := point.(string); !ok {
			return fmt.Errorf("content_outline item %d is not a string", i)
		}
	}
	return nil
}
