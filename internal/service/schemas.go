package service

import "time"

// Typed request/response contracts for the four consuming operations. Dates
// travel as ISO-8601 strings (e.g. "2026-08-25"); the service embeds them
// into prompts verbatim and never does date arithmetic.

type MissionType string

const (
	MissionExercise MissionType = "EXERCISE"
	MissionDiet     MissionType = "DIET"
)

type MissionResult string

const (
	MissionSuccess MissionResult = "SUCCESS"
	MissionFailure MissionResult = "FAILURE"
)

type EncouragementIntent string

const (
	IntentPraise EncouragementIntent = "PRAISE"
	IntentRetry  EncouragementIntent = "RETRY"
	IntentNormal EncouragementIntent = "NORMAL"
	IntentPush   EncouragementIntent = "PUSH"
)

// UserContext carries the caller-side user profile snapshot embedded into
// every prompt.
type UserContext struct {
	Nickname      string `json:"nickname"`
	AppGoal       string `json:"appGoal"`
	LifestyleType string `json:"lifestyleType"`
}

// --- daily missions ---

type OnboardingData struct {
	AppGoal            string   `json:"appGoal"`
	WorkTimeType       string   `json:"workTimeType"`
	AvailableStartTime string   `json:"availableStartTime"`
	AvailableEndTime   string   `json:"availableEndTime"`
	MinExerciseMinutes int      `json:"minExerciseMinutes"`
	PreferredExercises []string `json:"preferredExercises"`
	LifestyleType      string   `json:"lifestyleType"`
}

type MissionHistoryItem struct {
	Date          string        `json:"date"`
	MissionType   MissionType   `json:"missionType"`
	Difficulty    int           `json:"difficulty"`
	Result        MissionResult `json:"result"`
	FailureReason string        `json:"failureReason,omitempty"`
}

type DailyMissionRequest struct {
	UserID               int64                `json:"userId"`
	UserContext          UserContext          `json:"userContext"`
	Onboarding           OnboardingData       `json:"onboarding"`
	RecentMissionHistory []MissionHistoryItem `json:"recentMissionHistory"`
	WeeklyFailureReasons []string             `json:"weeklyFailureReasons"`
}

type Mission struct {
	Name              string      `json:"name"`
	Type              MissionType `json:"type"`
	Difficulty        int         `json:"difficulty"`
	EstimatedMinutes  int         `json:"estimatedMinutes"`
	EstimatedCalories int         `json:"estimatedCalories"`
}

type DailyMissionResponse struct {
	Missions []Mission `json:"missions"`
}

// --- daily feedback ---

type TodayMission struct {
	MissionType   MissionType   `json:"missionType"`
	Difficulty    int           `json:"difficulty"`
	Result        MissionResult `json:"result"`
	FailureReason string        `json:"failureReason,omitempty"`
}

type DailyFeedbackRequest struct {
	UserID       int64         `json:"userId"`
	TargetDate   string        `json:"targetDate"`
	UserContext  UserContext   `json:"userContext"`
	TodayMission *TodayMission `json:"todayMission"`
}

type EncouragementCandidate struct {
	Intent  EncouragementIntent `json:"intent"`
	Title   string              `json:"title"`
	Message string              `json:"message"`
}

type DailyFeedbackResponse struct {
	FeedbackText            string                   `json:"feedbackText"`
	EncouragementCandidates []EncouragementCandidate `json:"encouragementCandidates"`
}

// --- weekly analysis ---

type WeeklyResultItem struct {
	Date          string        `json:"date"`
	Result        MissionResult `json:"result"`
	FailureReason string        `json:"failureReason,omitempty"`
}

type DayOfWeekStat struct {
	DayOfWeek    string `json:"dayOfWeek"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
}

type WeeklyAnalysisRequest struct {
	UserID                int64              `json:"userId"`
	WeekStartDate         string             `json:"weekStartDate"`
	WeekEndDate           string             `json:"weekEndDate"`
	UserContext           UserContext        `json:"userContext"`
	FailureReasons        []string           `json:"failureReasons"`
	WeeklyResults         []WeeklyResultItem `json:"weeklyResults"`
	MonthlyDayOfWeekStats []DayOfWeekStat    `json:"monthlyDayOfWeekStats"`
}

type FailureReasonRank struct {
	Rank     int    `json:"rank"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type DayOfWeekFeedback struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type WeeklyAnalysisResponse struct {
	FailureReasonRanking []FailureReasonRank `json:"failureReasonRanking"`
	WeeklyFeedback       string              `json:"weeklyFeedback"`
	DayOfWeekFeedback    DayOfWeekFeedback   `json:"dayOfWeekFeedback"`
}

// --- chat ---

type ChatHistoryMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ChatInput struct {
	Type  string `json:"type"` // TEXT | OPTION
	Text  string `json:"text,omitempty"`
	Value string `json:"value,omitempty"`
}

type ChatRequest struct {
	UserContext         UserContext          `json:"userContext"`
	ConversationHistory []ChatHistoryMessage `json:"conversationHistory"`
	Input               *ChatInput           `json:"input"`
	Timestamp           time.Time            `json:"timestamp"`
}

type BotMessageOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type BotMessage struct {
	Text    string             `json:"text"`
	Options []BotMessageOption `json:"options,omitempty"`
}

type ChatState struct {
	IsTerminal bool `json:"isTerminal"`
}

type ChatResponse struct {
	BotMessage BotMessage `json:"botMessage"`
	State      ChatState  `json:"state"`
}
