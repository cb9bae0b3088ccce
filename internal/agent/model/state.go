package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/omteam/fitagent/server/internal/agent/trace"
)

// AgentKind identifies one of the three specialist agents a request can be
// routed to. It is the sole branching value of the routing decision.
type AgentKind string

const (
	AgentPlanner  AgentKind = "planner"
	AgentCoach    AgentKind = "coach"
	AgentAnalysis AgentKind = "analysis"
)

// Valid reports whether the kind is one of the three known agents.
func (k AgentKind) Valid() bool {
	switch k {
	case AgentPlanner, AgentCoach, AgentAnalysis:
		return true
	}
	return false
}

// AgentState is threaded through every pipeline node. Each node receives the
// current state by value and returns an updated copy; Messages is append-only
// and never truncated.
type AgentState struct {
	Messages       []*schema.Message
	UserRequest    string
	UserID         string
	ContextSummary string
	SelectedAgent  AgentKind // empty until classification completes
	AgentResponse  string
	TaskCompleted  bool

	Trace trace.Context
}

// AppendMessage returns the state with msg appended to the transcript.
func (s AgentState) AppendMessage(msg *schema.Message) AgentState {
	s.Messages = append(s.Messages, msg)
	return s
}

// RunInput is the public input for one end-to-end pipeline invocation.
type RunInput struct {
	UserRequest string
	UserID      string
	Payload     *ProfilePayload
}

// Result is the shape returned to the caller of the pipeline.
// SelectedAgent is nil when validation failed before classification.
type Result struct {
	Messages      []*schema.Message `json:"messages"`
	UserRequest   string            `json:"user_request"`
	SelectedAgent *AgentKind        `json:"selected_agent"`
	AgentResponse string            `json:"agent_response"`
	TaskCompleted bool              `json:"task_completed"`
}
