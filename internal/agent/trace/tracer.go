package trace

import (
	"context"
	"sync"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"

	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// Tracer owns the process-wide callbacks handler attached to traced model
// calls. The handler is built lazily exactly once; if construction panics the
// tracer degrades to "no tracing" instead of failing the request.
type Tracer struct {
	cfg   Config
	build func() einocb.Handler

	once    sync.Once
	handler einocb.Handler
}

// NewTracer wires a tracer around the provided handler constructor. The
// constructor is usually observers.NewTraceCallbacks; injecting it keeps this
// package free of a dependency on the observer implementations.
func NewTracer(cfg Config, build func() einocb.Handler) *Tracer {
	return &Tracer{cfg: cfg, build: build}
}

// Handler returns the lazily-built callbacks handler, or nil when tracing is
// disabled or construction failed.
func (t *Tracer) Handler() einocb.Handler {
	t.once.Do(func() {
		if !t.cfg.Enabled || t.build == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logx.Warn().Interface("panic", r).Msg("tracer construction failed; tracing disabled")
				t.handler = nil
			}
		}()
		t.handler = t.build()
	})
	return t.handler
}

// Attach stashes the correlation identity in ctx and, when the request was
// sampled, seeds the eino callback manager so subsequent component calls emit
// trace events tagged with that identity.
func (t *Tracer) Attach(ctx context.Context, tc Context) context.Context {
	ctx = WithContext(ctx, tc)
	if !tc.Enabled {
		return ctx
	}
	h := t.Handler()
	if h == nil {
		return ctx
	}
	return einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      "agent_orchestration",
		Type:      "Pipeline",
		Component: components.ComponentOfChatModel,
	}, h)
}

// WithNode rescopes the callback run info to a named pipeline node while
// reusing the handlers attached by Attach. Harmless when tracing is off.
func WithNode(ctx context.Context, node string) context.Context {
	return einocb.ReuseHandlers(ctx, &einocb.RunInfo{
		Name:      node,
		Type:      "ChatModel",
		Component: components.ComponentOfChatModel,
	})
}
