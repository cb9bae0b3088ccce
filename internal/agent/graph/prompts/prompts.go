package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/omteam/fitagent/server/internal/agent/model"
)

//go:embed template/safety_prompt.txt
var safetyPrompt string

//go:embed template/orchestrator_prompt.txt
var orchestratorPrompt string

//go:embed template/planner_prompt.txt
var plannerPrompt string

//go:embed template/coach_prompt.txt
var coachPrompt string

//go:embed template/analysis_prompt.txt
var analysisPrompt string

const (
	// ValidationMessage is returned when the request is empty or blank.
	ValidationMessage = "요청 내용이 비어 있어요. 구체적인 질문이나 요청을 입력해 주세요."
	// FallbackMessage replaces the agent response when a model invocation
	// fails. Non-technical on purpose; the failure is absorbed, not surfaced.
	FallbackMessage = "지금은 응답을 생성하는 데 문제가 발생했어요. 잠시 후 다시 시도해 주세요."
)

// SystemPromptFor returns the full system prompt for a role agent: the shared
// safety/tone policy always comes first, followed by the role-specific block.
func SystemPromptFor(kind model.AgentKind) string {
	var role string
	switch kind {
	case model.AgentPlanner:
		role = plannerPrompt
	case model.AgentCoach:
		role = coachPrompt
	default:
		role = analysisPrompt
	}
	return safetyPrompt + "\n" + role
}

// BuildClassifierMessages assembles the orchestrator-role message sequence.
func BuildClassifierMessages(ctx context.Context, contextSummary, userRequest string) ([]*schema.Message, error) {
	user := fmt.Sprintf(
		"사용자 요청: %s\n\n이 요청에 가장 적절한 에이전트를 선택하세요 (planner/coach/analysis 중 하나만):",
		userRequest,
	)
	return assemble(ctx, orchestratorPrompt, contextSummary, user)
}

// BuildAgentMessages assembles the message sequence for a role agent.
func BuildAgentMessages(ctx context.Context, kind model.AgentKind, contextSummary, userRequest string) ([]*schema.Message, error) {
	return assemble(ctx, SystemPromptFor(kind), contextSummary, userRequest)
}

// assemble enforces the required ordering: system prompt first, then the
// personalization summary as a system-level message only when non-empty, and
// the user message always last. The list flows through the Eino prompt
// component so prompt callbacks fire when tracing is attached.
func assemble(ctx context.Context, systemPrompt, contextSummary, userContent string) ([]*schema.Message, error) {
	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	if contextSummary != "" {
		messages = append(messages, schema.SystemMessage(contextSummary))
	}
	messages = append(messages, schema.UserMessage(userContent))

	// Pass the assembled list through a messages placeholder: contents are not
	// re-formatted, so JSON braces and template markers in user input are safe.
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("conversation", false),
	)
	out, err := tpl.Format(ctx, map[string]any{"conversation": messages})
	if err != nil {
		return nil, fmt.Errorf("assemble prompt messages: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("assemble prompt messages: empty result")
	}
	return out, nil
}
