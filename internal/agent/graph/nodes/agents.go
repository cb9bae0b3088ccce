package nodes

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/omteam/fitagent/server/internal/agent/graph/prompts"
	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/trace"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// RoleAgent is one of the three specialist nodes. They share this one shape
// and differ only in the role-specific system prompt selected by Kind. The
// raw model text becomes the agent response verbatim; structured parsing is
// the consuming layer's concern, not this node's.
type RoleAgent struct {
	Kind model.AgentKind
	cm   einomodel.BaseChatModel
}

func NewRoleAgent(kind model.AgentKind, cm einomodel.BaseChatModel) *RoleAgent {
	return &RoleAgent{Kind: kind, cm: cm}
}

// Run invokes the model with the role prompt and records the response. Any
// invocation failure substitutes the fixed localized fallback message and the
// task is still marked complete, so callers never special-case failures.
func (a *RoleAgent) Run(ctx context.Context, state model.AgentState) model.AgentState {
	userRequest := resolveUserRequest(state)

	response := prompts.FallbackMessage
	messages, err := prompts.BuildAgentMessages(ctx, a.Kind, state.ContextSummary, userRequest)
	if err != nil {
		logx.Warn().Err(err).
			Str("request_id", state.Trace.RequestID).
			Str("agent", string(a.Kind)).
			Msg("agent prompt assembly failed; using fallback response")
	} else {
		out, err := a.cm.Generate(trace.WithNode(ctx, string(a.Kind)), messages)
		if err != nil {
			logx.Warn().Err(err).
				Str("request_id", state.Trace.RequestID).
				Str("agent", string(a.Kind)).
				Msg("agent model call failed; using fallback response")
		} else {
			response = out.Content
		}
	}

	state.AgentResponse = response
	state.TaskCompleted = true
	return state.AppendMessage(schema.AssistantMessage(
		fmt.Sprintf("[%s]\n%s", strings.ToUpper(string(a.Kind)), response), nil,
	))
}
