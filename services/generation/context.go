package generation

import (
	"fmt"
	"strings"

	"github.com/VarozXYZ/didactio/models"
)

// buildModuleContext renders the accumulated course context for the module at
// currentIndex: the position-annotated course plan, the summaries of every
// module already generated, and the placement hints for the first and last
// module. Summaries are read by plan index, so a gap left by a failed or
// invalidated module contributes nothing.
func buildModuleContext(syllabus *models.Syllabus, summaries []string, currentIndex int) string {
	var context strings.Builder

	context.WriteString("COURSE PLAN:\n")
	for i, module := range syllabus.Modules {
		position := "upcoming"
		if i < currentIndex {
			position = "completed"
		} else if i == currentIndex {
			position = "current"
		}
		context.WriteString(fmt.Sprintf("%d. [%s] %s", i+1, position, module.Title))
		if module.Overview != "" {
			context.WriteString(": " + module.Overview)
		}
		context.WriteString("\n")
	}

	if currentIndex == 0 {
		context.WriteString("\nThis is the first module. The student is starting fresh: assume no prior knowledge from this course and introduce the subject from the ground up.\n")
	} else {
		context.WriteString("\nALREADY COVERED (build on this, do not re-explain it):\n")
		covered := false
		for i := 0; i < currentIndex && i < len(summaries); i++ {
			if summaries[i] == "" {
				continue
			}
			context.WriteString(fmt.Sprintf("- %s: %s\n", syllabus.Modules[i].Title, summaries[i]))
			covered = true
		}
		if !covered {
			context.WriteString("- No summaries are available for the earlier modules.\n")
		}
	}

	if currentIndex == len(syllabus.Modules)-1 {
		context.WriteString("\nThis is the final module. Treat it as the synthesis and capstone of the course, tying the earlier modules together.\n")
	} else {
		context.WriteString("\nThe upcoming modules will be taught later: connect to them where natural, but do not preempt their material.\n")
	}

	return context.String()
}
