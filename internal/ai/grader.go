package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nandaraf/famtask/internal/entity"
)

// Verdict is the grading result for one answer attempt.
type Verdict struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// Grader judges a submitted answer against a task. The production
// implementation calls Gemini; tests substitute their own.
type Grader interface {
	Grade(ctx context.Context, task *entity.Task, answer string) (*Verdict, error)
}

type llmGrader struct {
	client *LLMClient
}

func NewGrader(client *LLMClient) Grader {
	return &llmGrader{client: client}
}

func (g *llmGrader) Grade(ctx context.Context, task *entity.Task, answer string) (*Verdict, error) {
	prompt := fmt.Sprintf(`
You are grading a learning task assigned to a family member (often a child).
Be encouraging but honest. Judge ONLY whether the answer is correct.

Task title: %s
Task description:
%s

Reference answer (may be empty if the task is open-ended):
%s

Submitted answer:
%s

Instructions:
1. Decide if the submitted answer is correct. Minor spelling mistakes are fine,
   wrong content is not.
2. Write one or two sentences of feedback in plain language a child can read.
3. Output MUST be JSON: {"correct": true/false, "feedback": "..."}
`, task.Title, task.Description, task.Answer, answer)

	var verdict Verdict
	if err := g.client.generateJSON(ctx, prompt, &verdict); err != nil {
		return nil, err
	}

	return &verdict, nil
}

// decodeJSON tolerates models that wrap JSON output in a markdown fence.
func decodeJSON(raw string, out interface{}) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), out); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
