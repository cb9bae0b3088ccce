package graph_test

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omteam/fitagent/server/internal/agent/graph"
	"github.com/omteam/fitagent/server/internal/agent/graph/nodes"
	"github.com/omteam/fitagent/server/internal/agent/graph/prompts"
	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/personalize"
	"github.com/omteam/fitagent/server/internal/agent/trace"
	"github.com/omteam/fitagent/server/internal/core"
)

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

func buildTestPipeline(t *testing.T, classifier, responder *fakeChatModel) (*graph.Pipeline, *personalize.MemoryProfileStore) {
	t.Helper()
	store := personalize.NewMemoryProfileStore()
	p, err := graph.BuildPipeline(context.Background(), graph.Config{
		Env:      core.Testing,
		BuildSHA: "test-sha",
		Trace:    trace.Config{Enabled: false, SampleRate: "0"},
		Profiles: store,
		ChatModels: &nodes.ChatModels{
			Classifier:          classifier,
			Responder:           responder,
			ClassifierModelName: "fake-classifier",
			ResponderModelName:  "fake-responder",
		},
	})
	require.NoError(t, err)
	return p, store
}

func TestRunEmptyRequestShortCircuits(t *testing.T) {
	classifier := &fakeChatModel{reply: "planner"}
	responder := &fakeChatModel{reply: "ok"}
	p, _ := buildTestPipeline(t, classifier, responder)

	for _, request := range []string{"", "   ", "\n\t"} {
		result := p.Run(context.Background(), model.RunInput{UserRequest: request})

		assert.Nil(t, result.SelectedAgent)
		assert.False(t, result.TaskCompleted)
		assert.Equal(t, prompts.ValidationMessage, result.AgentResponse)
		assert.Empty(t, result.Messages)
	}
	assert.Zero(t, classifier.calls, "no model call on validation failure")
	assert.Zero(t, responder.calls)
}

func TestRunEndToEndRoadmapRequest(t *testing.T) {
	classifier := &fakeChatModel{reply: "planner"}
	responder := &fakeChatModel{reply: "1주차: 가볍게 걷기부터 시작하세요."}
	p, _ := buildTestPipeline(t, classifier, responder)

	result := p.Run(context.Background(), model.RunInput{
		UserRequest: "6개월 로드맵을 만들어줘",
	})

	require.NotNil(t, result.SelectedAgent)
	assert.Equal(t, model.AgentPlanner, *result.SelectedAgent)
	assert.NotEmpty(t, result.AgentResponse)
	assert.True(t, result.TaskCompleted)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, responder.calls)

	// transcript: user request, selection notice, agent reply
	require.Len(t, result.Messages, 3)
	assert.Equal(t, schema.User, result.Messages[0].Role)
	assert.Equal(t, schema.Assistant, result.Messages[1].Role)
	assert.Equal(t, schema.Assistant, result.Messages[2].Role)
}

func TestRunSelectedAgentAlwaysValid(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeChatModel
		request    string
		want       model.AgentKind
	}{
		{"garbage output routes by keyword", &fakeChatModel{reply: "죄송합니다만..."}, "전략이 필요해", model.AgentPlanner},
		{"classifier error routes by keyword", &fakeChatModel{err: errors.New("down")}, "조언 좀", model.AgentCoach},
		{"double fallback to analysis", &fakeChatModel{err: errors.New("down")}, "아무거나", model.AgentAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := buildTestPipeline(t, tt.classifier, &fakeChatModel{reply: "응답"})
			result := p.Run(context.Background(), model.RunInput{UserRequest: tt.request})
			require.NotNil(t, result.SelectedAgent)
			assert.Equal(t, tt.want, *result.SelectedAgent)
			assert.True(t, result.SelectedAgent.Valid())
		})
	}
}

func TestRunAgentFailureAbsorbedIntoFallback(t *testing.T) {
	classifier := &fakeChatModel{reply: "coach"}
	responder := &fakeChatModel{err: errors.New("rate limited")}
	p, _ := buildTestPipeline(t, classifier, responder)

	result := p.Run(context.Background(), model.RunInput{UserRequest: "코칭해줘"})

	require.NotNil(t, result.SelectedAgent)
	assert.Equal(t, model.AgentCoach, *result.SelectedAgent)
	assert.Equal(t, prompts.FallbackMessage, result.AgentResponse)
	assert.True(t, result.TaskCompleted)
}

func TestRunAppliesPersonalizationPayload(t *testing.T) {
	classifier := &fakeChatModel{reply: "coach"}
	responder := &fakeChatModel{reply: "응원합니다"}
	p, store := buildTestPipeline(t, classifier, responder)
	ctx := context.Background()

	result := p.Run(ctx, model.RunInput{
		UserRequest: "코칭 부탁해",
		UserID:      "u1",
		Payload: &model.ProfilePayload{
			Preferences: map[string]string{"운동선호": "수영"},
			Event:       map[string]string{"mission": "걷기", model.EventKeyResult: model.ResultSuccess},
		},
	})
	assert.True(t, result.TaskCompleted)

	summary, err := store.Summarize(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, summary, "운동선호:수영")
	assert.Contains(t, summary, "성공 1회")
}

func TestBuildPipelineRequiresProfiles(t *testing.T) {
	_, err := graph.BuildPipeline(context.Background(), graph.Config{
		ChatModels: &nodes.ChatModels{
			Classifier: &fakeChatModel{},
			Responder:  &fakeChatModel{},
		},
	})
	assert.Error(t, err)
}

func TestBuildPipelineRequiresCredentialForRealModels(t *testing.T) {
	_, err := graph.BuildPipeline(context.Background(), graph.Config{
		Profiles: personalize.NewMemoryProfileStore(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
