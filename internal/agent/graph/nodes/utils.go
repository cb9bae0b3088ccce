package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/omteam/fitagent/server/internal/agent/model"
)

// resolveUserRequest returns the request text from the state, falling back to
// the most recent user-authored message in the transcript when the request
// field is blank.
func resolveUserRequest(state model.AgentState) string {
	if strings.TrimSpace(state.UserRequest) != "" {
		return state.UserRequest
	}
	for i := len(state.Messages) - 1; i >= 0; i-- {
		msg := state.Messages[i]
		if msg == nil {
			continue
		}
		if msg.Role == schema.User {
			return msg.Content
		}
	}
	return ""
}
