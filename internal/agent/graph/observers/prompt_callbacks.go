package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// newPromptHandler builds a typed PromptCallbackHandler logging prompt
// assembly. Rendered contents are not logged; the personalization summary may
// carry personal data and the PII decision belongs to the sampler, not here.
func newPromptHandler(project string) *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			ev := logx.Debug().Str("project", project).Str("node", info.Name)
			correlate(ctx, ev)
			if output != nil {
				ev = ev.Int("rendered_messages", len(output.Result))
			}
			ev.Msg("prompt assembled")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			ev := logx.Warn().Str("project", project).Str("node", info.Name).Err(err)
			correlate(ctx, ev)
			ev.Msg("prompt assembly error")
			return ctx
		},
	}
}
