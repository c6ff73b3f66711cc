package generation

import (
	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

// qualifierPayload is the wire shape of the qualifier decision. Valid is a
// pointer so a response that omits the field is distinguishable from an
// explicit false.
type qualifierPayload struct {
	Valid           *bool  `json:"valid" jsonschema:"required,description=Whether the topic can become a course"`
	ImprovedPrompt  string `json:"improved_prompt,omitempty" jsonschema:"description=The improved course brief when the topic is accepted"`
	RejectionReason string `json:"rejection_reason,omitempty" jsonschema:"description=Why the topic was rejected"`
}

var qualifierSchema = &llm.ResponseSchema{
	Name:        "qualify_topic",
	Description: "Record whether the requested topic can become a course, together with the improved brief or the rejection reason",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"valid": map[string]any{
				"type":        "boolean",
				"description": "Whether the topic can become a course",
			},
			"improved_prompt": map[string]any{
				"type":        "string",
				"description": "The improved course brief when the topic is accepted",
			},
			"rejection_reason": map[string]any{
				"type":        "string",
				"description": "Why the topic was rejected",
			},
		},
		"required": []string{"valid"},
	},
	Properties: llm.ReflectProperties[qualifierPayload](),
}

var syllabusSchema = &llm.ResponseSchema{
	Name:        "submit_syllabus",
	Description: "Submit the complete structured syllabus for the course",
	Parameters:  syllabusParameters(),
	Properties:  llm.ReflectProperties[models.Syllabus](),
}

func syllabusParameters() map[string]any {
	lessonSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "The lesson title",
			},
			"content_outline": map[string]any{
				"type":        "array",
				"description": "The concrete points the lesson will cover",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []string{"title", "content_outline"},
	}

	moduleSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "The module title",
			},
			"overview": map[string]any{
				"type":        "string",
				"description": "A short overview of what the module covers",
			},
			"estimated_duration_minutes": map[string]any{
				"type":        "integer",
				"description": "Estimated module duration in whole minutes",
			},
			"lessons": map[string]any{
				"type":        "array",
				"description": "The ordered lessons of the module",
				"items":       lessonSchema,
			},
		},
		"required": []string{"title", "lessons"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "The course topic",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "The course title",
			},
			"keywords": map[string]any{
				"type":        "string",
				"description": "Comma-separated keywords describing the course",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A paragraph describing the course",
			},
			"total_duration_minutes": map[string]any{
				"type":        "integer",
				"description": "Estimated total course duration in whole minutes",
			},
			"modules": map[string]any{
				"type":        "array",
				"description": "The ordered modules of the course",
				"items":       moduleSchema,
			},
		},
		"required": []string{"topic", "title", "keywords", "description", "total_duration_minutes", "modules"},
	}
}
