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

// plannerKeywords, coachKeywords drive the deterministic fallback when the
// model's answer matches no label or the call fails outright. Anything that
// matches neither set routes to analysis.
var (
	plannerKeywords = []string{"계획", "전략", "로드맵", "plan", "strategy"}
	coachKeywords   = []string{"코칭", "가이드", "조언", "coach", "guide", "advice"}
)

// Classifier maps a free-text request to one of the three agent labels with
// a single model call. Classification always produces a label: model errors
// and unparseable output fall back to keyword heuristics and are never
// surfaced to the caller.
type Classifier struct {
	cm einomodel.BaseChatModel
}

func NewClassifier(cm einomodel.BaseChatModel) *Classifier {
	return &Classifier{cm: cm}
}

const classifierNode = "classifier"

// Run classifies the request and records the selection in the state, along
// with a synthetic assistant message naming the chosen agent.
func (c *Classifier) Run(ctx context.Context, state model.AgentState) model.AgentState {
	userRequest := resolveUserRequest(state)

	var selected model.AgentKind
	messages, err := prompts.BuildClassifierMessages(ctx, state.ContextSummary, userRequest)
	if err != nil {
		logx.Warn().Err(err).Str("request_id", state.Trace.RequestID).Msg("classifier prompt assembly failed; using keyword fallback")
		selected = FallbackAgentKind(userRequest)
	} else {
		out, err := c.cm.Generate(trace.WithNode(ctx, classifierNode), messages)
		if err != nil {
			logx.Warn().Err(err).Str("request_id", state.Trace.RequestID).Msg("classifier model call failed; using keyword fallback")
			selected = FallbackAgentKind(userRequest)
		} else {
			selected = NormalizeAgentChoice(out.Content, userRequest)
		}
	}

	logx.Debug().
		Str("request_id", state.Trace.RequestID).
		Str("selected_agent", string(selected)).
		Msg("agent selected")

	state.UserRequest = userRequest
	state.SelectedAgent = selected
	return state.AppendMessage(schema.AssistantMessage(
		fmt.Sprintf("[Orchestrator] 선택된 에이전트: %s", selected), nil,
	))
}

// NormalizeAgentChoice maps raw model output to a label via case-insensitive
// substring match in fixed priority order planner > coach > analysis; the
// first match wins. When nothing matches it defers to the keyword fallback
// over the original request.
func NormalizeAgentChoice(raw, fallbackRequest string) model.AgentKind {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, string(model.AgentPlanner)):
		return model.AgentPlanner
	case strings.Contains(s, string(model.AgentCoach)):
		return model.AgentCoach
	case strings.Contains(s, string(model.AgentAnalysis)):
		return model.AgentAnalysis
	}
	return FallbackAgentKind(fallbackRequest)
}

// FallbackAgentKind scans the request for planning- and coaching-related
// keywords, defaulting to analysis.
func FallbackAgentKind(request string) model.AgentKind {
	r := strings.ToLower(request)
	for _, k := range plannerKeywords {
		if strings.Contains(r, k) {
			return model.AgentPlanner
		}
	}
	for _, k := range coachKeywords {
		if strings.Contains(r, k) {
			return model.AgentCoach
		}
	}
	return model.AgentAnalysis
}
