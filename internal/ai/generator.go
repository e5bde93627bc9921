package ai

import (
	"context"
	"fmt"
)

// TaskDraft is a generated task proposal for an admin to review and assign.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Answer      string `json:"answer"`
	TaskPoints  int    `json:"task_points"`
	DueInDays   int    `json:"due_in_days"`
}

// Generator drafts new learning tasks with the LLM.
type Generator interface {
	Generate(ctx context.Context, subject string, ageHint int) (*TaskDraft, error)
}

type llmGenerator struct {
	client *LLMClient
}

func NewGenerator(client *LLMClient) Generator {
	return &llmGenerator{client: client}
}

func (g *llmGenerator) Generate(ctx context.Context, subject string, ageHint int) (*TaskDraft, error) {
	prompt := fmt.Sprintf(`
You create short learning or chore tasks for a family task board.

Subject: %s
Approximate age of the assignee: %d

Instructions:
1. Create ONE task: a clear title and a description of what to do or answer.
2. Use plain text for the description, no markdown.
3. Provide the expected answer. For chores without a checkable answer, leave it empty.
4. Suggest a point value between 5 and 30 matching the effort, and a due window
   in whole days (1-7).
5. Output MUST be JSON:
   {"title": "...", "description": "...", "answer": "...", "task_points": 10, "due_in_days": 2}
`, subject, ageHint)

	var draft TaskDraft
	if err := g.client.generateJSON(ctx, prompt, &draft); err != nil {
		return nil, err
	}

	if draft.TaskPoints <= 0 {
		draft.TaskPoints = 10
	}
	if draft.DueInDays <= 0 {
		draft.DueInDays = 2
	}

	return &draft, nil
}
