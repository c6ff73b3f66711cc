package generation

import (
	"context"
	"fmt"
	"log"

	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

// generateModule produces the content and the summary for one module. The
// syllabus parameter may be a regeneration variant of the stored plan. A
// failed content call fails the module; a failed summary call does not, the
// module keeps a placeholder summary instead.
func (s *Service) generateModule(ctx context.Context, client llm.Client, course *models.Course, syllabus *models.Syllabus, planIndex int) (string, string, error) {
	moduleTitle := syllabus.Modules[planIndex].Title
	log.Printf("[INFO] Generating module %d/%d (%s) for course %d", planIndex+1, len(syllabus.Modules), moduleTitle, course.ID)

	content, err := client.Generate(ctx, llm.GenerateRequest{
		System: MODULE_CONTENT_SYSTEM_PROMPT,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildModuleContentPrompt(course, syllabus, planIndex)},
		},
		Temperature: 0.7,
		MaxTokens:   contentTokenBudget(course.Config.Length),
	})
	if err != nil {
		return "", "", fmt.Errorf("content generation failed: %w", err)
	}

	summary, err := s.summarizeModule(ctx, client, moduleTitle, content)
	if err != nil {
		log.Printf("[WARN] Summary for module %d (%s) of course %d failed, using placeholder: %v", planIndex+1, moduleTitle, course.ID, err)
		summary = fmt.Sprintf("Module %q was generated, but no summary is available.", moduleTitle)
	}
	return content, summary, nil
}

func (s *Service) summarizeModule(ctx context.Context, client llm.Client, moduleTitle, content string) (string, error) {
	return client.Generate(ctx, llm.GenerateRequest{
		System: MODULE_SUMMARY_SYSTEM_PROMPT,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildModuleSummaryPrompt(moduleTitle, content)},
		},
		Temperature: 0.3,
		MaxTokens:   400,
	})
}

func contentTokenBudget(length string) int {
	switch length {
	case models.CourseLengthShort:
		return 1500
	case models.CourseLengthLong:
		return 5000
	default:
		return 3000
	}
}
