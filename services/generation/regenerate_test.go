package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
)

func TestRegenerateModuleInPlace(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	service := newTestService(repo, client)
	seeded := seedCourse(t, repo, 3)

	index := 1
	result, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
		UserContext: "focus on channels",
	})
	if err != nil {
		t.Fatalf("RegenerateModule failed: %v", err)
	}

	if result.Status != models.CourseStatusReady {
		t.Errorf("regeneration must not change the status, got %s", result.Status)
	}
	if result.Modules[1].Content != "generated content for module 2" {
		t.Errorf("module 1 content %q, want regenerated content", result.Modules[1].Content)
	}
	if result.Modules[0].Content != "original content 1" || result.Modules[2].Content != "original content 3" {
		t.Errorf("regeneration touched other modules: %q / %q", result.Modules[0].Content, result.Modules[2].Content)
	}

	wantSummaries := []string{"original summary 1", "summary for module 2", "original summary 3"}
	for i, want := range wantSummaries {
		if result.IterationSummaries[i] != want {
			t.Errorf("summary[%d] = %q, want %q", i, result.IterationSummaries[i], want)
		}
	}

	prompt := client.lastContentPrompt(1)
	if !strings.Contains(prompt, "Additional context for this regeneration: focus on channels") {
		t.Errorf("user context did not reach the prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Module 1 Title: original summary 1") {
		t.Errorf("regeneration lost the original prior summary:\n%s", prompt)
	}
	if !strings.Contains(prompt, "CURRENT MODULE (2 of 3)") {
		t.Errorf("regenerated the wrong module:\n%s", prompt)
	}

	persisted, err := repo.GetCourseByID(seeded.ID)
	if err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if persisted.Modules[1].Content != "generated content for module 2" {
		t.Errorf("regenerated module not persisted: %q", persisted.Modules[1].Content)
	}
	if persisted.Status != models.CourseStatusReady {
		t.Errorf("persisted status %s, want ready", persisted.Status)
	}
	// The user context variant is prompt-only, the stored plan keeps its
	// original description.
	if strings.Contains(persisted.Syllabus.Description, "Additional context") {
		t.Errorf("user context leaked into the stored syllabus: %q", persisted.Syllabus.Description)
	}
}

func TestRegenerateModuleFailureLeavesCourseUntouched(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	client.contentErrs[1] = errors.New("model down")
	service := newTestService(repo, client)
	seeded := seedCourse(t, repo, 3)

	index := 1
	_, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
	})
	if err == nil {
		t.Fatal("expected regeneration to fail")
	}
	if !strings.Contains(err.Error(), "failed to regenerate module 1") {
		t.Errorf("unexpected error %q", err.Error())
	}

	course, err := repo.GetCourseByID(seeded.ID)
	if err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if course.Modules[1].Content != "original content 2" {
		t.Errorf("failed regeneration altered content: %q", course.Modules[1].Content)
	}
	if course.IterationSummaries[1] != "original summary 2" {
		t.Errorf("failed regeneration altered summary: %q", course.IterationSummaries[1])
	}
	if course.Status != models.CourseStatusReady {
		t.Errorf("failed regeneration altered status: %s", course.Status)
	}
	if course.ErrorMessage != "" {
		t.Errorf("failed regeneration wrote an error message: %q", course.ErrorMessage)
	}
	if course.ModuleProgress[1] != models.ModuleProgressCompleted {
		t.Errorf("failed regeneration altered progress: %q", course.ModuleProgress[1])
	}
}

func TestRegenerateModuleValidation(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	service := newTestService(repo, client)
	seeded := seedCourse(t, repo, 2)

	t.Run("missing module index", func(t *testing.T) {
		_, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{})
		if err == nil || !strings.Contains(err.Error(), "module_index is required") {
			t.Errorf("expected a missing-index error, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		index := 5
		_, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{ModuleIndex: &index})
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Errorf("expected an out-of-range error, got %v", err)
		}
	})

	t.Run("negative index", func(t *testing.T) {
		index := -1
		_, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{ModuleIndex: &index})
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Errorf("expected an out-of-range error, got %v", err)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		index := 0
		_, err := service.RegenerateModule(context.Background(), 99, &models.RegenerateModuleRequest{ModuleIndex: &index})
		if !errors.Is(err, db.ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("course without syllabus", func(t *testing.T) {
		bare := &models.Course{Status: models.CourseStatusError, Provider: "test", OriginalPrompt: "Go"}
		if err := repo.CreateCourse(bare); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		index := 0
		_, err := service.RegenerateModule(context.Background(), bare.ID, &models.RegenerateModuleRequest{ModuleIndex: &index})
		if err == nil || !strings.Contains(err.Error(), "has no syllabus") {
			t.Errorf("expected a no-syllabus error, got %v", err)
		}
	})
}

func TestRegenerateModuleProviderOverride(t *testing.T) {
	repo := newFakeRepo()
	defaultClient := newFakeClient("test")
	otherClient := newFakeClient("anthropic")
	clients := &fakeClients{
		clients: map[string]*fakeClient{"test": defaultClient, "anthropic": otherClient},
		def:     "test",
	}
	service := NewService(repo, clients, nil, false)
	seeded := seedCourse(t, repo, 2)

	index := 0
	result, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
		Provider:    "anthropic",
	})
	if err != nil {
		t.Fatalf("RegenerateModule failed: %v", err)
	}
	if result.Provider != "anthropic" {
		t.Errorf("provider override not applied, got %q", result.Provider)
	}
	if otherClient.contentCallCount() != 1 || defaultClient.contentCallCount() != 0 {
		t.Errorf("override client calls %d, default client calls %d",
			otherClient.contentCallCount(), defaultClient.contentCallCount())
	}
}

func TestRegenerateInvalidatesDownstreamWhenEnabled(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	service := NewService(repo, singleClient(client), nil, true)
	seeded := seedCourse(t, repo, 3)

	index := 0
	result, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
		UserContext: "use a networking example",
	})
	if err != nil {
		t.Fatalf("RegenerateModule failed: %v", err)
	}

	if result.Status != models.CourseStatusGeneratingContent {
		t.Errorf("downstream invalidation should leave the course generating, got %s", result.Status)
	}
	if len(result.Modules) != 1 || result.Modules[0].PlanIndex != 0 {
		t.Errorf("downstream modules should be discarded at return, got %+v", result.Modules)
	}

	course := waitForStatus(t, repo, seeded.ID, models.CourseStatusReady, models.CourseStatusError)
	if course.Status != models.CourseStatusReady {
		t.Fatalf("downstream rebuild failed: %s with %q", course.Status, course.ErrorMessage)
	}
	if len(course.Modules) != 3 {
		t.Fatalf("expected a fully rebuilt course, got %d modules", len(course.Modules))
	}
	for i := 0; i < 3; i++ {
		want := fmt.Sprintf("generated content for module %d", i+1)
		if course.Modules[i].Content != want {
			t.Errorf("module %d content %q, want %q", i, course.Modules[i].Content, want)
		}
	}
	if client.contentCallCount() != 3 {
		t.Errorf("expected 3 content calls (one regenerated, two rebuilt), got %d", client.contentCallCount())
	}

	// The rebuilt downstream modules must see the regenerated module's new
	// summary, not the original one.
	second := client.lastContentPrompt(1)
	if !strings.Contains(second, "- Module 1 Title: summary for module 1") {
		t.Errorf("downstream rebuild did not see the new summary:\n%s", second)
	}
	if strings.Contains(second, "original summary 1") {
		t.Errorf("downstream rebuild saw the stale summary:\n%s", second)
	}
}

func TestRegenerateLastModuleWithInvalidationEnabled(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	service := NewService(repo, singleClient(client), nil, true)
	seeded := seedCourse(t, repo, 3)

	index := 2
	result, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
	})
	if err != nil {
		t.Fatalf("RegenerateModule failed: %v", err)
	}

	if result.Status != models.CourseStatusReady {
		t.Errorf("last module has no downstream, status should stay ready, got %s", result.Status)
	}
	if client.contentCallCount() != 1 {
		t.Errorf("expected a single content call, got %d", client.contentCallCount())
	}
	if len(result.Modules) != 3 {
		t.Errorf("expected all modules kept, got %d", len(result.Modules))
	}
}

func TestRegenerateKeepsDownstreamWhenDisabled(t *testing.T) {
	repo := newFakeRepo()
	client := newFakeClient("test")
	service := newTestService(repo, client)
	seeded := seedCourse(t, repo, 3)

	index := 0
	result, err := service.RegenerateModule(context.Background(), seeded.ID, &models.RegenerateModuleRequest{
		ModuleIndex: &index,
	})
	if err != nil {
		t.Fatalf("RegenerateModule failed: %v", err)
	}

	if result.Status != models.CourseStatusReady {
		t.Errorf("status should stay ready, got %s", result.Status)
	}
	if client.contentCallCount() != 1 {
		t.Errorf("expected a single content call, got %d", client.contentCallCount())
	}
	if result.Modules[1].Content != "original content 2" || result.Modules[2].Content != "original content 3" {
		t.Errorf("downstream modules were touched: %q / %q", result.Modules[1].Content, result.Modules[2].Content)
	}
	if result.IterationSummaries[1] != "original summary 2" || result.IterationSummaries[2] != "original summary 3" {
		t.Errorf("downstream summaries were touched: %v", result.IterationSummaries)
	}
}
