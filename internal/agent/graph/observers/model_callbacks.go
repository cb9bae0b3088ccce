package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"github.com/rs/zerolog"

	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/trace"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that logs model calls
// with the request's correlation identity and, on completion, the token usage
// and USD cost for the invoked model.
func newModelHandler(project string) *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *einomodel.CallbackInput) context.Context {
			ev := logx.Debug().Str("project", project).Str("node", info.Name)
			correlate(ctx, ev)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages))
				if um := lastUserContent(input.Messages); um != "" {
					ev = ev.Int("user_content_len", len(um))
				}
			}
			ev.Msg("model call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) context.Context {
			ev := logx.Debug().Str("project", project).Str("node", info.Name)
			correlate(ctx, ev)
			if output != nil && output.Message != nil {
				ev = ev.Int("response_len", len(strings.TrimSpace(output.Message.Content)))
				if meta := output.Message.ResponseMeta; meta != nil && meta.Usage != nil {
					modelName := ""
					if output.Config != nil {
						modelName = output.Config.Model
					}
					inC, outC, totalC := model.ComputeCost(meta.Usage, model.ResolvePricing(modelName))
					ev = ev.
						Str("model", modelName).
						Int("prompt_tokens", meta.Usage.PromptTokens).
						Int("completion_tokens", meta.Usage.CompletionTokens).
						Int("total_tokens", meta.Usage.TotalTokens).
						Float64("input_cost_usd", inC).
						Float64("output_cost_usd", outC).
						Float64("total_cost_usd", totalC)
				}
			}
			ev.Msg("model call end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			ev := logx.Warn().Str("project", project).Str("node", info.Name).Err(err)
			correlate(ctx, ev)
			ev.Msg("model call error")
			return ctx
		},
	}
}

// correlate stamps the trace identity carried in ctx onto the log event.
func correlate(ctx context.Context, ev *zerolog.Event) {
	tc, ok := trace.FromContext(ctx)
	if !ok {
		return
	}
	ev.Str("request_id", tc.RequestID).
		Str("thread_id", tc.ThreadID).
		Str("env", tc.Env.String()).
		Str("build_sha", tc.BuildSHA)
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
