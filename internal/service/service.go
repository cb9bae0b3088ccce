package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/omteam/fitagent/server/internal/agent/model"
	errx "github.com/omteam/fitagent/server/internal/core/error"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// Runner executes one agent invocation end to end. Satisfied by
// *graph.Pipeline; tests substitute a canned implementation.
type Runner interface {
	Run(ctx context.Context, in model.RunInput) *model.Result
}

// AgentService is the consuming layer over the pipeline: it builds the
// instruction prompt for each operation, runs the agents, and parses the
// structured JSON the prompt demanded out of the free-text reply. A reply
// that violates the JSON contract is a hard error here, never a fallback.
type AgentService struct {
	runner Runner
}

func NewAgentService(runner Runner) *AgentService {
	return &AgentService{runner: runner}
}

// DailyMissions asks for three recommended missions for today.
func (s *AgentService) DailyMissions(ctx context.Context, req DailyMissionRequest) (*DailyMissionResponse, error) {
	prompt := fmt.Sprintf(`사용자 ID: %d
사용자 컨텍스트: %s
온보딩 데이터: %s
최근 미션 이력: %s
주간 주요 실패 원인: %s

위 정보를 바탕으로 사용자에게 오늘 수행할 데일리 추천 미션 3개를 추천해주세요.
미션 이름은 최대 20자 입니다.
미션은 EXERCISE 또는 DIET 유형으로 구성될 수 있습니다.
난이도는 1이상 5이하 정수로 표현합니다.
각 미션에 대해 예상 소요 시간(분)과 예상 소모 칼로리(kcal)를 함께 알려주세요.
응답은 반드시 아래 JSON 형식으로만 해주세요:
`+"```json"+`
{
    "missions": [
        {
            "name": "미션 이름 1",
            "type": "EXERCISE",
            "difficulty": 1,
            "estimatedMinutes": 20,
            "estimatedCalories": 80
        }
    ]
}
`+"```",
		req.UserID,
		compactJSON(req.UserContext),
		compactJSON(req.Onboarding),
		compactJSON(req.RecentMissionHistory),
		compactJSON(req.WeeklyFailureReasons),
	)

	payload := &model.ProfilePayload{
		Preferences: map[string]string{
			"app_goal":  req.Onboarding.AppGoal,
			"lifestyle": req.Onboarding.LifestyleType,
		},
	}

	var resp DailyMissionResponse
	if err := s.invoke(ctx, prompt, strconv.FormatInt(req.UserID, 10), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DailyFeedback asks for an analysis of one day's mission outcome plus
// encouragement message candidates.
func (s *AgentService) DailyFeedback(ctx context.Context, req DailyFeedbackRequest) (*DailyFeedbackResponse, error) {
	todayMission := "해당 날짜의 미션 기록 없음"
	if req.TodayMission != nil {
		todayMission = compactJSON(req.TodayMission)
	}

	prompt := fmt.Sprintf(`사용자 ID: %d
분석 대상 날짜: %s
사용자 컨텍스트: %s
해당 날짜의 미션: %s

위 정보를 바탕으로 다음 내용을 분석하여 피드백을 제공해주세요.
1. 해당 날짜의 미션 수행 결과 및 최근 기록을 반영한 분석형 AI 피드백 문장을 생성해주세요. (feedbackText)
2. 메인 화면에 표시할 격려/응원 메시지 후보를 생성해주세요. 각 메시지는 'intent'(PRAISE, RETRY, NORMAL, PUSH), 'title', 'message'를 포함해야 합니다. (encouragementCandidates)

응답은 반드시 아래 JSON 형식으로만 해주세요:
`+"```json"+`
{
    "feedbackText": "시간 부족으로 미션을 완료하지 못했어요. 부담을 줄여 짧은 미션부터 다시 시작해보는 걸 추천해요.",
    "encouragementCandidates": [
        {
            "intent": "RETRY",
            "title": "흐름은 다시 만들 수 있어요",
            "message": "내일은 5분짜리 미션부터 가볍게 시작해봐요."
        }
    ]
}
`+"```",
		req.UserID,
		req.TargetDate,
		compactJSON(req.UserContext),
		todayMission,
	)

	var payload *model.ProfilePayload
	if req.TodayMission != nil {
		event := map[string]string{
			"mission": string(req.TodayMission.MissionType),
		}
		switch req.TodayMission.Result {
		case MissionSuccess:
			event[model.EventKeyResult] = model.ResultSuccess
		case MissionFailure:
			event[model.EventKeyResult] = model.ResultFail
		}
		if req.TodayMission.FailureReason != "" {
			event["fail_reason"] = req.TodayMission.FailureReason
		}
		payload = &model.ProfilePayload{Event: event}
	}

	var resp DailyFeedbackResponse
	if err := s.invoke(ctx, prompt, strconv.FormatInt(req.UserID, 10), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WeeklyAnalysis asks for a week-level failure ranking and feedback.
func (s *AgentService) WeeklyAnalysis(ctx context.Context, req WeeklyAnalysisRequest) (*WeeklyAnalysisResponse, error) {
	prompt := fmt.Sprintf(`사용자 ID: %d
분석 주간: %s ~ %s
사용자 컨텍스트: %s
주간 실패 사유: %s
주간 결과: %s
월간 요일별 통계: %s

위 주간 데이터를 종합적으로 분석하여 사용자에게 다음 정보를 제공해주세요.
1. 이번 주 실패 원인 순위 (failureReasonRanking)
2. 이번 주 종합 피드백 (weeklyFeedback)
3. 요일별 분석 기반 피드백 (dayOfWeekFeedback)

응답은 반드시 아래 JSON 형식으로만 해주세요:
`+"```json"+`
{
  "failureReasonRanking": [
    { "rank": 1, "category": "시간 부족", "count": 3 }
  ],
  "weeklyFeedback": "이번 주는 시간 관리가 어려웠던 한 주였네요.",
  "dayOfWeekFeedback": {
    "title": "화요일과 목요일에 집중해보세요",
    "content": "지난 한 달간 화요일과 목요일에 실패가 많았습니다."
  }
}
`+"```",
		req.UserID,
		req.WeekStartDate,
		req.WeekEndDate,
		compactJSON(req.UserContext),
		compactJSON(req.FailureReasons),
		compactJSON(req.WeeklyResults),
		compactJSON(req.MonthlyDayOfWeekStats),
	)

	var resp WeeklyAnalysisResponse
	if err := s.invoke(ctx, prompt, strconv.FormatInt(req.UserID, 10), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat asks for the next bot message given the running conversation.
func (s *AgentService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var history strings.Builder
	for _, msg := range req.ConversationHistory {
		fmt.Fprintf(&history, "- %s: %s\n", msg.Role, msg.Text)
	}

	lastInput := "없음 (대화 시작)"
	if req.Input != nil {
		lastInput = compactJSON(req.Input)
	}

	prompt := fmt.Sprintf(`사용자 컨텍스트: %s
현재 대화 내역:
%s
사용자 마지막 입력: %s
요청 시각: %s

위 대화의 흐름과 사용자 정보를 바탕으로 다음 챗봇 메시지를 생성해주세요.
필요하다면 사용자에게 선택지를 제공할 수 있습니다.
대화가 자연스럽게 종료되어야 할 시점이라고 판단되면 "state.isTerminal"을 true로 설정해주세요.

응답은 반드시 아래 JSON 형식으로만 해주세요:
`+"```json"+`
{
    "botMessage": {
        "text": "챗봇 응답 메시지",
        "options": [
            {"label": "선택지 1", "value": "VALUE_1"}
        ]
    },
    "state": {
        "isTerminal": false
    }
}
`+"```",
		compactJSON(req.UserContext),
		history.String(),
		lastInput,
		req.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	)

	var resp ChatResponse
	if err := s.invoke(ctx, prompt, req.UserContext.Nickname, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// invoke runs the pipeline and decodes the structured reply into out.
func (s *AgentService) invoke(ctx context.Context, prompt, userID string, payload *model.ProfilePayload, out any) error {
	result := s.runner.Run(ctx, model.RunInput{
		UserRequest: prompt,
		UserID:      userID,
		Payload:     payload,
	})

	if !result.TaskCompleted {
		return errx.New(fmt.Errorf("agent did not complete: %s", result.AgentResponse),
			http.StatusBadRequest, result.AgentResponse)
	}

	if err := decodeAgentJSON(result.AgentResponse, out); err != nil {
		logx.Error().Err(err).Msg("agent response violated the JSON contract")
		return errx.New(err, http.StatusInternalServerError, errx.AgentContractMessage)
	}
	return nil
}

// decodeAgentJSON extracts the fenced ```json block when present (falling
// back to the whole body) and unmarshals it into out.
func decodeAgentJSON(raw string, out any) error {
	body := raw
	if start := strings.Index(raw, "```json"); start != -1 {
		if end := strings.LastIndex(raw, "```"); end > start {
			body = strings.TrimSpace(raw[start+len("```json") : end])
		}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("parse agent response as JSON: %w", err)
	}
	return nil
}

// compactJSON renders v as one-line JSON for prompt embedding.
func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
