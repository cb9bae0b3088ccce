package trace

import (
	"context"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omteam/fitagent/server/internal/core"
)

type nopHandler struct{}

func (nopHandler) OnStart(ctx context.Context, _ *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
	return ctx
}

func (nopHandler) OnEnd(ctx context.Context, _ *einocb.RunInfo, _ einocb.CallbackOutput) context.Context {
	return ctx
}

func (nopHandler) OnError(ctx context.Context, _ *einocb.RunInfo, _ error) context.Context {
	return ctx
}

func (nopHandler) OnStartWithStreamInput(ctx context.Context, _ *einocb.RunInfo, input *schema.StreamReader[einocb.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

func (nopHandler) OnEndWithStreamOutput(ctx context.Context, _ *einocb.RunInfo, output *schema.StreamReader[einocb.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

func TestHandlerBuiltExactlyOnce(t *testing.T) {
	builds := 0
	tr := NewTracer(Config{Enabled: true}, func() einocb.Handler {
		builds++
		return nopHandler{}
	})

	first := tr.Handler()
	second := tr.Handler()

	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestHandlerDisabledSkipsConstruction(t *testing.T) {
	builds := 0
	tr := NewTracer(Config{Enabled: false}, func() einocb.Handler {
		builds++
		return nopHandler{}
	})

	assert.Nil(t, tr.Handler())
	assert.Nil(t, tr.Handler())
	assert.Zero(t, builds)
}

func TestHandlerConstructionPanicDegradesToNil(t *testing.T) {
	tr := NewTracer(Config{Enabled: true}, func() einocb.Handler {
		panic("constructor exploded")
	})

	assert.NotPanics(t, func() {
		assert.Nil(t, tr.Handler())
	})
	// once burned, repeated calls stay nil without re-running the constructor
	assert.NotPanics(t, func() {
		assert.Nil(t, tr.Handler())
	})
}

func TestHandlerNilConstructor(t *testing.T) {
	tr := NewTracer(Config{Enabled: true}, nil)
	assert.Nil(t, tr.Handler())
}

func TestAttachStampsContextWhenNotSampled(t *testing.T) {
	builds := 0
	tr := NewTracer(Config{Enabled: true}, func() einocb.Handler {
		builds++
		return nopHandler{}
	})

	tc := NewContext("u1", core.Production, "abc123")
	ctx := tr.Attach(context.Background(), tc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)
	// an unsampled request must not trigger handler construction
	assert.Zero(t, builds)
}

func TestAttachStampsContextWhenConstructionFails(t *testing.T) {
	tr := NewTracer(Config{Enabled: true}, func() einocb.Handler {
		panic("constructor exploded")
	})

	tc := NewContext("u1", core.Development, "abc123")
	tc.Enabled = true

	var ctx context.Context
	assert.NotPanics(t, func() {
		ctx = tr.Attach(context.Background(), tc)
	})

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)
}

func TestAttachSeedsCallbacksForSampledRequest(t *testing.T) {
	tr := NewTracer(Config{Enabled: true}, func() einocb.Handler {
		return nopHandler{}
	})

	tc := NewContext("u1", core.Development, "abc123")
	tc.Enabled = true
	ctx := tr.Attach(context.Background(), tc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)

	// node rescoping over a seeded context must not panic
	assert.NotPanics(t, func() {
		WithNode(ctx, "classifier")
	})
}
