package generation

import (
	"fmt"
	"strings"

	"github.com/VarozXYZ/didactio/models"
)

const QUALIFIER_SYSTEM_PROMPT = `You are the intake filter for an online course generator. You decide whether a requested topic can be turned into a structured educational course, and you rewrite acceptable requests into a precise course brief.

Accept a topic when a competent instructor could teach a multi-module course about it. Reject a topic when it is gibberish, has no teachable content, is harmful to teach, or is so broad or so narrow that no coherent course could come out of it.

When you accept, write the improved prompt: an unambiguous one-paragraph brief naming the subject, the scope, and what the student should be able to do afterwards. When you reject, give a short reason the requester will understand.`

const SYLLABUS_SYSTEM_PROMPT = `You are an experienced instructional designer. You turn a course brief into a complete syllabus: course title, description, keywords, a total duration estimate, and an ordered list of modules, each with an overview, a duration estimate, and its lessons. Every lesson carries a content outline listing the concrete points it will cover.

Order the modules so that each one builds on the previous ones. Keep duration estimates realistic and internally consistent: the module estimates should add up to approximately the total course duration.`

const MODULE_CONTENT_SYSTEM_PROMPT = `You are an expert educator writing one module of an online course. You receive the course plan, a digest of what earlier modules already taught, and the plan for the current module.

Write the full teaching content for the current module in Markdown, working through its lessons in order. Build on what was already covered instead of repeating it, and do not take material from modules that come later. Be concrete: worked examples, analogies and short exercises are worth more than abstract description.`

const MODULE_SUMMARY_SYSTEM_PROMPT = `You condense course modules. Given the full content of one module, produce a compact summary of what it actually taught: the concepts introduced, the terms defined, the skills practiced. The summary seeds the context for generating later modules, so favor precision over elegance. Respond with plain text, one paragraph at most.`

func buildQualifierPrompt(topic, level string) string {
	return fmt.Sprintf(`Evaluate the following course request.

Requested topic: %s
Student level: %s

Decide whether this can become a course. If it can, produce the improved course brief; if it cannot, give the rejection reason.`, topic, level)
}

func buildSyllabusPrompt(course *models.Course) string {
	var prompt strings.Builder
	prompt.WriteString("Create the syllabus for the following course.\n\n")
	prompt.WriteString(fmt.Sprintf("Course brief: %s\n", course.ImprovedPrompt))
	prompt.WriteString(fmt.Sprintf("Student level: %s\n", course.Config.Level))
	prompt.WriteString(fmt.Sprintf("Course language: %s\n", course.Config.Language))
	if course.Config.MinLessonsPerModule > 0 {
		prompt.WriteString(fmt.Sprintf("Each module must contain at least %d lessons.\n", course.Config.MinLessonsPerModule))
	}
	if course.Config.MaxTotalDurationMinutes > 0 {
		prompt.WriteString(fmt.Sprintf("The total course duration must not exceed %d minutes.\n", course.Config.MaxTotalDurationMinutes))
	}
	prompt.WriteString("\nUse whole minutes for every duration estimate and keep the per-module estimates consistent with the total.")
	return prompt.String()
}

func buildModuleContentPrompt(course *models.Course, syllabus *models.Syllabus, currentIndex int) string {
	module := syllabus.Modules[currentIndex]

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("COURSE: %s\n", syllabus.Title))
	prompt.WriteString(fmt.Sprintf("Topic: %s\n", syllabus.Topic))
	if syllabus.Description != "" {
		prompt.WriteString(fmt.Sprintf("Description: %s\n", syllabus.Description))
	}
	prompt.WriteString(fmt.Sprintf("Student level: %s\n", course.Config.Level))
	prompt.WriteString(fmt.Sprintf("Write the module in %s.\n", course.Config.Language))

	if style := buildStyleDirectives(course.Config); style != "" {
		prompt.WriteString("\nSTYLE:\n")
		prompt.WriteString(style)
	}

	prompt.WriteString("\n")
	prompt.WriteString(buildModuleContext(syllabus, course.IterationSummaries, currentIndex))

	prompt.WriteString(fmt.Sprintf("\nCURRENT MODULE (%d of %d): %s\n", currentIndex+1, len(syllabus.Modules), module.Title))
	if module.Overview != "" {
		prompt.WriteString(fmt.Sprintf("Overview: %s\n", module.Overview))
	}
	prompt.WriteString("Lessons to cover, in order:\n")
	for i, lesson := range module.Lessons {
		prompt.WriteString(fmt.Sprintf("%d. %s\n", i+1, lesson.Title))
		for _, point := range lesson.ContentOutline {
			prompt.WriteString(fmt.Sprintf("   - %s\n", point))
		}
	}

	prompt.WriteString("\nWrite the complete module content now, as Markdown with a heading per lesson.")
	return prompt.String()
}

func buildStyleDirectives(config models.GenerationConfig) string {
	var directives strings.Builder
	switch config.Length {
	case models.CourseLengthShort:
		directives.WriteString("- Keep the module concise and focused on essentials.\n")
	case models.CourseLengthLong:
		directives.WriteString("- Be thorough and develop each lesson in depth.\n")
	default:
		directives.WriteString("- Aim for balanced depth across the lessons.\n")
	}
	if config.Tone != "" {
		directives.WriteString(fmt.Sprintf("- Tone: %s.\n", config.Tone))
	}
	if config.Technicality != "" {
		directives.WriteString(fmt.Sprintf("- Technicality: %s.\n", config.Technicality))
	}
	if config.AdditionalContext != "" {
		directives.WriteString(fmt.Sprintf("- Additional context from the learner: %s\n", config.AdditionalContext))
	}
	return directives.String()
}

func buildModuleSummaryPrompt(moduleTitle, content string) string {
	return fmt.Sprintf(`Summarize what the module %q taught, so that the authors of later modules know what they can build on and must not repeat.

MODULE CONTENT:
%s`, moduleTitle, content)
}
