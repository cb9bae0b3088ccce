package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/omteam/fitagent/server/internal/agent/graph"
	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/personalize"
	"github.com/omteam/fitagent/server/internal/agent/repo"
	"github.com/omteam/fitagent/server/internal/agent/trace"
	"github.com/omteam/fitagent/server/internal/core"
	"github.com/omteam/fitagent/server/internal/service"
	logx "github.com/omteam/fitagent/server/pkg/logger"
	pkgredis "github.com/omteam/fitagent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure. Redis is optional; without a URL the in-memory
	// profile store is used.
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Deployment identity
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	BuildSHA string `envconfig:"GIT_SHA" default:"unknown"`

	// Agent configs
	Classifier model.ClassifierModelConfig
	Agent      model.AgentModelConfig
	Trace      trace.Config
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(envCfg.AppEnv)
	logx.Init(logx.LoggerOpts{Environment: env})

	var profiles model.ProfileRepository
	if envCfg.Redis.URL != "" {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		profiles = repo.NewRedisProfileRepository(rdb)
		fmt.Println("Using Redis profile store")
	} else {
		profiles = personalize.NewMemoryProfileStore()
		fmt.Println("Using in-memory profile store")
	}

	pipeline, err := graph.BuildPipeline(ctx, graph.Config{
		APIKey:     envCfg.APIKey,
		BaseURL:    envCfg.BaseURL,
		Env:        env,
		BuildSHA:   envCfg.BuildSHA,
		Classifier: envCfg.Classifier,
		Agent:      envCfg.Agent,
		Trace:      envCfg.Trace,
		Profiles:   profiles,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	testRequests := []struct {
		description string
		input       model.RunInput
	}{
		{
			description: "Roadmap request, anonymous user",
			input: model.RunInput{
				UserRequest: "살빼고 싶어. 6개월 내에 건강하게 감량할 수 있는 로드맵을 만들어줘.",
			},
		},
		{
			description: "Coaching request with a recorded mission event",
			input: model.RunInput{
				UserRequest: "오늘 미션을 못 했는데, 내일은 어떻게 하면 좋을지 조언해줘.",
				UserID:      "demo_user_1",
				Payload: &model.ProfilePayload{
					Preferences: map[string]string{"운동선호": "걷기"},
					Event: map[string]string{
						"mission":        "10분 스트레칭",
						"mission_result": "fail",
						"fail_reason":    "야근",
					},
				},
			},
		},
		{
			description: "Analysis request for the same user",
			input: model.RunInput{
				UserRequest: "최근 내 기록을 보고 무엇이 문제인지 분석해줘.",
				UserID:      "demo_user_1",
			},
		},
	}

	for i, test := range testRequests {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Request: %q\n", test.input.UserRequest)
		fmt.Println("Processing...")

		result := pipeline.Run(ctx, test.input)

		selected := "(none)"
		if result.SelectedAgent != nil {
			selected = string(*result.SelectedAgent)
		}
		fmt.Printf("Selected agent: %s\n", selected)
		fmt.Printf("Response: %s\n", result.AgentResponse)
		fmt.Println("─────────────────────────────────────────────")

		// slight delay between tests for readability
		time.Sleep(500 * time.Millisecond)
	}

	// The service layer drives the same pipeline through the structured
	// JSON contract: instruction prompt in, typed missions out.
	svc := service.NewAgentService(pipeline)
	fmt.Println("\nTest 4: Daily mission recommendations via the service layer")
	missions, err := svc.DailyMissions(ctx, service.DailyMissionRequest{
		UserID:      1,
		UserContext: service.UserContext{Nickname: "데모", AppGoal: "다이어트", LifestyleType: "직장인"},
		Onboarding: service.OnboardingData{
			AppGoal:            "다이어트",
			WorkTimeType:       "DAY",
			AvailableStartTime: "19:00",
			AvailableEndTime:   "21:00",
			MinExerciseMinutes: 20,
			PreferredExercises: []string{"걷기"},
			LifestyleType:      "직장인",
		},
		RecentMissionHistory: []service.MissionHistoryItem{
			{Date: "2026-08-24", MissionType: service.MissionExercise, Difficulty: 2, Result: service.MissionSuccess},
			{Date: "2026-08-23", MissionType: service.MissionDiet, Difficulty: 1, Result: service.MissionFailure, FailureReason: "회식"},
		},
	})
	if err != nil {
		fmt.Printf("Daily mission service error: %v\n", err)
	} else {
		for _, m := range missions.Missions {
			fmt.Printf("- %s (%s, 난이도 %d, %d분, %dkcal)\n",
				m.Name, m.Type, m.Difficulty, m.EstimatedMinutes, m.EstimatedCalories)
		}
	}

	fmt.Println("All pipeline tests completed")
}
