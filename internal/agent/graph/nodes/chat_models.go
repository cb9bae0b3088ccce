package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/omteam/fitagent/server/internal/agent/model"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey           string
	BaseURL          string
	ClassifierConfig *model.ClassifierModelConfig
	AgentConfig      *model.AgentModelConfig
}

// ChatModels holds the classifier and responder chat models. The fields are
// interfaces so tests can inject fakes without touching the provider SDK.
type ChatModels struct {
	Classifier einomodel.BaseChatModel
	Responder  einomodel.BaseChatModel

	ClassifierModelName string
	ResponderModelName  string
}

// NewChatModels creates the classifier and responder models against the
// Gemini API. A missing credential is a hard construction error; nothing in
// the pipeline can run without a model, so this fails at startup rather than
// per request.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing model API key")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	classifier, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ClassifierConfig.Model,
		Temperature: &config.ClassifierConfig.Temperature,
		MaxTokens:   &config.ClassifierConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}

	responder, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.AgentConfig.Model,
		Temperature: &config.AgentConfig.Temperature,
		MaxTokens:   &config.AgentConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating responder model")
		return nil, fmt.Errorf("error creating responder model: %w", err)
	}

	return &ChatModels{
		Classifier:          classifier,
		Responder:           responder,
		ClassifierModelName: config.ClassifierConfig.Model,
		ResponderModelName:  config.AgentConfig.Model,
	}, nil
}
