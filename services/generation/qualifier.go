package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

// QualifierDecision is the outcome of the prompt qualification step. A
// rejection is a business outcome, not an error: the caller reads Valid and
// RejectionReason instead of getting an error back.
type QualifierDecision struct {
	Valid           bool
	ImprovedPrompt  string
	RejectionReason string
}

func (s *Service) qualifyPrompt(ctx context.Context, client llm.Client, course *models.Course) (*QualifierDecision, error) {
	raw, err := client.Generate(ctx, llm.GenerateRequest{
		System: QUALIFIER_SYSTEM_PROMPT,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQualifierPrompt(course.OriginalPrompt, course.Config.Level)},
		},
		Temperature: 0.2,
		MaxTokens:   600,
		Schema:      qualifierSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("qualifier call failed: %w", err)
	}

	var payload qualifierPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("qualifier returned malformed JSON: %w", err)
	}
	if payload.Valid == nil {
		return nil, fmt.Errorf("qualifier response is missing the valid field")
	}

	decision := &QualifierDecision{
		Valid:           *payload.Valid,
		ImprovedPrompt:  payload.ImprovedPrompt,
		RejectionReason: payload.RejectionReason,
	}
	if decision.Valid && decision.ImprovedPrompt == "" {
		decision.ImprovedPrompt = course.OriginalPrompt
	}
	if !decision.Valid && decision.RejectionReason == "" {
		decision.RejectionReason = "The topic was rejected by the prompt filter."
	}
	return decision, nil
}
