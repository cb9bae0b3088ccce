package model

import (
	"context"
	"time"
)

const (
	// MaxProfileEvents bounds the per-user event history; the oldest entries
	// are evicted once the cap is exceeded.
	MaxProfileEvents = 30
	// ProfileTTL is the retention window after which a record is treated as
	// absent. Expiry is checked lazily on access, not by a background sweep.
	ProfileTTL = 14 * 24 * time.Hour

	// EventKeyResult is the event field whose value drives the success/fail
	// counters.
	EventKeyResult = "mission_result"
	// ResultSuccess and ResultFail are the recognized outcome markers; any
	// other value leaves the counters untouched.
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// ProfilePayload is the personalization update consumed from the upstream
// layer: a preference mapping merged last-write-wins and an optional
// free-form event.
type ProfilePayload struct {
	Preferences map[string]string `json:"preferences,omitempty"`
	Event       map[string]string `json:"event,omitempty"`
}

// ProfileEvent is one recorded event, stamped by the store at update time.
type ProfileEvent struct {
	Fields map[string]string `json:"fields"`
	At     time.Time         `json:"at"`
}

// ProfileStats accumulates mission outcomes across the record's lifetime.
type ProfileStats struct {
	Success int `json:"success"`
	Fail    int `json:"fail"`
}

// ProfileRecord is the stored per-user personalization state.
type ProfileRecord struct {
	Preferences map[string]string `json:"preferences"`
	Events      []ProfileEvent    `json:"events"`
	Stats       ProfileStats      `json:"stats"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProfileRepository is the personalization store contract. Implementations
// must treat records older than ProfileTTL as absent and must never expose
// partially applied updates.
type ProfileRepository interface {
	// Update merges the payload into the user's record. Empty userID is a no-op.
	Update(ctx context.Context, userID string, payload ProfilePayload) error

	// Summarize renders the user's record as a human-readable block intended
	// for injection as a system-level message. Empty string when the user is
	// unknown or the record has expired.
	Summarize(ctx context.Context, userID string) (string, error)
}
