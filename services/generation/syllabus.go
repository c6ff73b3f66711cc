package generation

import (
	"context"
	"fmt"

	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

func (s *Service) generateSyllabus(ctx context.Context, client llm.Client, course *models.Course) (*models.Syllabus, error) {
	raw, err := client.Generate(ctx, llm.GenerateRequest{
		System: SYLLABUS_SYSTEM_PROMPT,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSyllabusPrompt(course)},
		},
		Temperature: 0.4,
		MaxTokens:   4000,
		Schema:      syllabusSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("syllabus call failed: %w", err)
	}
	return parseSyllabus(raw)
}
