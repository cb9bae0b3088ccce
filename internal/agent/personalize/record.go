package personalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/omteam/fitagent/server/internal/agent/model"
)

// summaryFields lists the event fields rendered into the summary, in display
// order, with their Korean labels.
var summaryFields = []struct {
	key   string
	label string
}{
	{"mission", "미션"},
	{model.EventKeyResult, "결과"},
	{"fail_reason", "실패이유"},
	{"condition", "컨디션"},
	{"schedule", "일정"},
}

// NewRecord returns an empty record stamped at now.
func NewRecord(now time.Time) *model.ProfileRecord {
	return &model.ProfileRecord{
		Preferences: map[string]string{},
		Events:      []model.ProfileEvent{},
		UpdatedAt:   now,
	}
}

// Expired reports whether the record has outlived the retention window at now.
func Expired(rec *model.ProfileRecord, now time.Time) bool {
	return rec != nil && now.Sub(rec.UpdatedAt) > model.ProfileTTL
}

// ApplyUpdate merges a payload into the record in place: preferences are
// merged last-write-wins, the event (if any) is stamped with now and appended
// with the oldest entries evicted beyond the cap, and recognized outcome
// markers bump the counters. The last-updated timestamp is always refreshed.
func ApplyUpdate(rec *model.ProfileRecord, payload model.ProfilePayload, now time.Time) {
	if rec.Preferences == nil {
		rec.Preferences = map[string]string{}
	}
	for k, v := range payload.Preferences {
		rec.Preferences[k] = v
	}

	if len(payload.Event) > 0 {
		fields := make(map[string]string, len(payload.Event))
		for k, v := range payload.Event {
			fields[k] = v
		}
		rec.Events = append(rec.Events, model.ProfileEvent{Fields: fields, At: now})
		if excess := len(rec.Events) - model.MaxProfileEvents; excess > 0 {
			rec.Events = rec.Events[excess:]
		}

		switch fields[model.EventKeyResult] {
		case model.ResultSuccess:
			rec.Stats.Success++
		case model.ResultFail:
			rec.Stats.Fail++
		}
	}

	rec.UpdatedAt = now
}

// RenderSummary renders the record as the Korean context block injected ahead
// of the user's message: up to the 3 most recent events, the full preference
// mapping (sorted for deterministic output) and the cumulative counters.
func RenderSummary(rec *model.ProfileRecord) string {
	recent := rec.Events
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var recentStrs []string
	for _, e := range recent {
		var parts []string
		for _, f := range summaryFields {
			if v := e.Fields[f.key]; v != "" {
				parts = append(parts, f.label+":"+v)
			}
		}
		if len(parts) > 0 {
			recentStrs = append(recentStrs, strings.Join(parts, " / "))
		}
	}

	prefsStr := "없음"
	if len(rec.Preferences) > 0 {
		keys := make([]string, 0, len(rec.Preferences))
		for k := range rec.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+":"+rec.Preferences[k])
		}
		prefsStr = strings.Join(pairs, ", ")
	}

	recentStr := "없음"
	if len(recentStrs) > 0 {
		recentStr = strings.Join(recentStrs, " | ")
	}

	return fmt.Sprintf(
		"유저 컨텍스트 요약:\n"+
			"- 선호/기본값: %s\n"+
			"- 최근 기록(최대 3건): %s\n"+
			"- 누적 통계: 성공 %d회 / 실패 %d회\n"+
			"이 정보를 고려해 개인화된 답변을 제공하세요.",
		prefsStr, recentStr, rec.Stats.Success, rec.Stats.Fail,
	)
}
