package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewTraceCallbacks aggregates the model and prompt observer handlers into
// one callbacks.Handler, attached to sampled requests by the tracer.
func NewTraceCallbacks(project string) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(project)).
		Prompt(newPromptHandler(project)).
		Handler()
}
