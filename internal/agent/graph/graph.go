package graph

import (
	"context"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"github.com/omteam/fitagent/server/internal/agent/graph/nodes"
	"github.com/omteam/fitagent/server/internal/agent/graph/observers"
	"github.com/omteam/fitagent/server/internal/agent/graph/prompts"
	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/trace"
	"github.com/omteam/fitagent/server/internal/core"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// Config holds everything needed to compose the pipeline end-to-end. When
// ChatModels is nil the Gemini models are constructed from APIKey; tests
// inject fakes through ChatModels instead.
type Config struct {
	APIKey   string
	BaseURL  string
	Env      core.Environment
	BuildSHA string

	Classifier model.ClassifierModelConfig
	Agent      model.AgentModelConfig
	Trace      trace.Config

	Profiles   model.ProfileRepository
	ChatModels *nodes.ChatModels
}

// Pipeline runs one request end to end: validate, personalize, decide
// sampling, classify, dispatch to exactly one role agent. A linear two-hop
// flow with a single fan-out, deliberately not a general workflow graph.
type Pipeline struct {
	classifier *nodes.Classifier
	agents     map[model.AgentKind]*nodes.RoleAgent
	profiles   model.ProfileRepository
	sampler    *trace.Sampler
	tracer     *trace.Tracer
	env        core.Environment
	buildSHA   string
}

// BuildPipeline constructs chat models (unless injected), the sampler and the
// tracer, and wires the classifier and the three role agents.
func BuildPipeline(ctx context.Context, cfg Config) (*Pipeline, error) {
	if cfg.Profiles == nil {
		return nil, fmt.Errorf("profile repository is nil")
	}

	cms := cfg.ChatModels
	if cms == nil {
		var err error
		cms, err = nodes.NewChatModels(ctx, nodes.ChatModelConfig{
			APIKey:           cfg.APIKey,
			BaseURL:          cfg.BaseURL,
			ClassifierConfig: &cfg.Classifier,
			AgentConfig:      &cfg.Agent,
		})
		if err != nil {
			return nil, err
		}
	}
	if cms.Classifier == nil || cms.Responder == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}

	p := &Pipeline{
		classifier: nodes.NewClassifier(cms.Classifier),
		agents: map[model.AgentKind]*nodes.RoleAgent{
			model.AgentPlanner:  nodes.NewRoleAgent(model.AgentPlanner, cms.Responder),
			model.AgentCoach:    nodes.NewRoleAgent(model.AgentCoach, cms.Responder),
			model.AgentAnalysis: nodes.NewRoleAgent(model.AgentAnalysis, cms.Responder),
		},
		profiles: cfg.Profiles,
		sampler:  trace.NewSampler(cfg.Trace, cfg.Env),
		tracer: trace.NewTracer(cfg.Trace, func() einocb.Handler {
			return observers.NewTraceCallbacks(cfg.Trace.Project)
		}),
		env:      cfg.Env,
		buildSHA: cfg.BuildSHA,
	}

	logx.Debug().Msg("Agent pipeline built successfully")
	return p, nil
}

// Run executes one invocation. All failures past validation are absorbed into
// deterministic fallbacks, so Run never returns an error: the Result is
// always well-formed.
func (p *Pipeline) Run(ctx context.Context, in model.RunInput) *model.Result {
	if strings.TrimSpace(in.UserRequest) == "" {
		return &model.Result{
			Messages:      []*schema.Message{},
			UserRequest:   in.UserRequest,
			SelectedAgent: nil,
			AgentResponse: prompts.ValidationMessage,
			TaskCompleted: false,
		}
	}

	if in.UserID != "" && in.Payload != nil {
		if err := p.profiles.Update(ctx, in.UserID, *in.Payload); err != nil {
			logx.Warn().Err(err).Str("user_id", in.UserID).Msg("profile update failed; continuing without it")
		}
	}

	summary := ""
	if in.UserID != "" {
		s, err := p.profiles.Summarize(ctx, in.UserID)
		if err != nil {
			logx.Warn().Err(err).Str("user_id", in.UserID).Msg("profile summary failed; continuing without personalization")
		} else {
			summary = s
		}
	}

	tc := trace.NewContext(in.UserID, p.env, p.buildSHA)
	tc.Enabled = p.sampler.ShouldTrace(summary)
	ctx = p.tracer.Attach(ctx, tc)

	state := model.AgentState{
		Messages:       []*schema.Message{schema.UserMessage(in.UserRequest)},
		UserRequest:    in.UserRequest,
		UserID:         in.UserID,
		ContextSummary: summary,
		Trace:          tc,
	}

	state = p.classifier.Run(ctx, state)

	kind := state.SelectedAgent
	if !kind.Valid() {
		// defensive double fallback; the classifier always sets a label
		kind = model.AgentAnalysis
		state.SelectedAgent = kind
	}

	state = p.agents[kind].Run(ctx, state)

	selected := state.SelectedAgent
	return &model.Result{
		Messages:      state.Messages,
		UserRequest:   state.UserRequest,
		SelectedAgent: &selected,
		AgentResponse: state.AgentResponse,
		TaskCompleted: state.TaskCompleted,
	}
}
