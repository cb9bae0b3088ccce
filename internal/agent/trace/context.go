package trace

import (
	"context"

	"github.com/google/uuid"

	"github.com/omteam/fitagent/server/internal/core"
)

// Context is the immutable correlation identity propagated to every model
// call of one invocation: request id, thread id, environment, build tag and
// the sampling decision. It is created once per request and read-only after.
type Context struct {
	RequestID string
	ThreadID  string
	UserID    string
	Env       core.Environment
	BuildSHA  string
	Enabled   bool
}

// NewContext mints a correlation identity for one invocation. The thread id
// falls back to a generated value when no user id is supplied, so anonymous
// requests still group consistently within a single invocation.
func NewContext(userID string, env core.Environment, buildSHA string) Context {
	threadID := userID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	return Context{
		RequestID: uuid.NewString(),
		ThreadID:  threadID,
		UserID:    userID,
		Env:       env,
		BuildSHA:  buildSHA,
	}
}

type ctxKey struct{}

// WithContext stashes the correlation identity in ctx so callback handlers
// and node logs can recover it.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext recovers the correlation identity, if any.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}
