package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omteam/fitagent/server/internal/agent/model"
)

func TestSystemPromptAlwaysPrefixedWithSafetyPolicy(t *testing.T) {
	for _, kind := range []model.AgentKind{model.AgentPlanner, model.AgentCoach, model.AgentAnalysis} {
		got := SystemPromptFor(kind)
		assert.True(t, strings.HasPrefix(got, safetyPrompt), "safety policy must come first for %s", kind)
		assert.NotEqual(t, safetyPrompt, got, "role block must be appended for %s", kind)
	}
}

func TestBuildAgentMessagesOrderingWithSummary(t *testing.T) {
	msgs, err := BuildAgentMessages(context.Background(), model.AgentCoach, "유저 컨텍스트 요약: ...", "오늘 뭐하지?")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, safetyPrompt))

	// personalization never precedes the safety policy
	assert.Equal(t, schema.System, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "유저 컨텍스트 요약")

	// user message is always last
	assert.Equal(t, schema.User, msgs[2].Role)
	assert.Equal(t, "오늘 뭐하지?", msgs[2].Content)
}

func TestBuildAgentMessagesWithoutSummary(t *testing.T) {
	msgs, err := BuildAgentMessages(context.Background(), model.AgentAnalysis, "", "기록 분석해줘")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
}

func TestBuildClassifierMessages(t *testing.T) {
	msgs, err := BuildClassifierMessages(context.Background(), "", "로드맵 만들어줘")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Contains(t, msgs[0].Content, "오케스트레이터")
	assert.Contains(t, msgs[1].Content, "로드맵 만들어줘")
	assert.Contains(t, msgs[1].Content, "planner/coach/analysis")
}

func TestAssemblePreservesJSONBracesInUserInput(t *testing.T) {
	user := `응답은 {"missions": [{"name": "x"}]} 형식으로`
	msgs, err := BuildAgentMessages(context.Background(), model.AgentPlanner, "", user)
	require.NoError(t, err)
	assert.Equal(t, user, msgs[len(msgs)-1].Content)
}
