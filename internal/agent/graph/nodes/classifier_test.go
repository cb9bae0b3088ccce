package nodes

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omteam/fitagent/server/internal/agent/graph/prompts"
	"github.com/omteam/fitagent/server/internal/agent/model"
)

// fakeChatModel returns a canned reply or error and counts invocations.
type fakeChatModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestNormalizeAgentChoice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.AgentKind
	}{
		{"exact planner", "planner", model.AgentPlanner},
		{"exact coach", `"coach"`, model.AgentCoach},
		{"exact analysis", "Analysis", model.AgentAnalysis},
		{"label embedded in prose", "I would pick the coach agent here.", model.AgentCoach},
		{"planner wins over coach", "either planner or coach would fit", model.AgentPlanner},
		{"planner wins over analysis", "analysis... no, planner", model.AgentPlanner},
		{"coach wins over analysis", "coach or analysis", model.AgentCoach},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAgentChoice(tt.raw, ""))
		})
	}
}

func TestFallbackAgentKind(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    model.AgentKind
	}{
		{"korean roadmap", "6개월 로드맵 만들어줘", model.AgentPlanner},
		{"english plan", "please make a plan for me", model.AgentPlanner},
		{"strategy", "what strategy should I use", model.AgentPlanner},
		{"korean advice", "조언 부탁해", model.AgentCoach},
		{"korean guide", "가이드가 필요해", model.AgentCoach},
		{"english coaching", "coach me through this", model.AgentCoach},
		{"default analysis", "요즘 기록이 왜 이럴까?", model.AgentAnalysis},
		{"empty defaults to analysis", "", model.AgentAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackAgentKind(tt.request))
		})
	}
}

func TestClassifierRunSelectsFromModelOutput(t *testing.T) {
	cm := &fakeChatModel{reply: "coach"}
	c := NewClassifier(cm)

	state := model.AgentState{
		Messages:    []*schema.Message{schema.UserMessage("도와줘")},
		UserRequest: "도와줘",
	}
	got := c.Run(context.Background(), state)

	assert.Equal(t, model.AgentCoach, got.SelectedAgent)
	assert.Equal(t, 1, cm.calls)
	// synthetic assistant message appended, original transcript intact
	require.Len(t, got.Messages, 2)
	assert.Equal(t, schema.Assistant, got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, "coach")
}

func TestClassifierRunSwallowsModelFailure(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("quota exceeded")}
	c := NewClassifier(cm)

	state := model.AgentState{UserRequest: "운동 로드맵 짜줘"}
	got := c.Run(context.Background(), state)

	assert.Equal(t, model.AgentPlanner, got.SelectedAgent)
	assert.True(t, got.SelectedAgent.Valid())
}

func TestClassifierRunResolvesRequestFromHistory(t *testing.T) {
	cm := &fakeChatModel{reply: "analysis"}
	c := NewClassifier(cm)

	state := model.AgentState{
		Messages: []*schema.Message{
			schema.UserMessage("첫번째 질문"),
			schema.AssistantMessage("답변", nil),
			schema.UserMessage("기록 분석해줘"),
		},
	}
	got := c.Run(context.Background(), state)

	assert.Equal(t, "기록 분석해줘", got.UserRequest)
	assert.Equal(t, model.AgentAnalysis, got.SelectedAgent)
}

func TestRoleAgentRunSuccess(t *testing.T) {
	cm := &fakeChatModel{reply: "주 3회 걷기부터 시작해보세요."}
	a := NewRoleAgent(model.AgentCoach, cm)

	state := model.AgentState{
		Messages:    []*schema.Message{schema.UserMessage("조언해줘")},
		UserRequest: "조언해줘",
	}
	got := a.Run(context.Background(), state)

	assert.Equal(t, "주 3회 걷기부터 시작해보세요.", got.AgentResponse)
	assert.True(t, got.TaskCompleted)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "[COACH]")
	assert.Contains(t, got.Messages[1].Content, "걷기부터")
}

func TestRoleAgentRunAbsorbsFailure(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("connection reset")}
	a := NewRoleAgent(model.AgentPlanner, cm)

	state := model.AgentState{UserRequest: "계획 세워줘"}
	got := a.Run(context.Background(), state)

	assert.Equal(t, prompts.FallbackMessage, got.AgentResponse)
	assert.True(t, got.TaskCompleted, "failures are absorbed, task still completes")
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "[PLANNER]")
}
