package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/talberry/sdsu-study-bot/internal/config"
)

const (
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultArkBaseURL   = "https://ark.cn-beijing.volces.com/api/v3"
	defaultAzureVersion = "2024-06-01"
)

// NewChatModel creates a tool-calling chat model.
// Providers: openai (default), azure, ark.
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ToolCallingChatModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai config is nil")
	}
	switch cfg.Provider {
	case "openai", "":
		return newOpenAIChatModel(ctx, cfg)
	case "azure":
		return newAzureChatModel(ctx, cfg)
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig) (model.ToolCallingChatModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	modelCfg := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: cfg.APIKey,
	}
	// proxies and OpenAI-compatible gateways
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = cfg.BaseURL
	}
	modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.TopP = sampling(cfg.Options)

	cm, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return cm, nil
}

func newAzureChatModel(ctx context.Context, cfg *config.AIConfig) (model.ToolCallingChatModel, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure provider requires ai.base_url")
	}

	modelCfg := &openai.ChatModelConfig{
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		ByAzure:    true,
		APIVersion: defaultAzureVersion,
	}
	modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.TopP = sampling(cfg.Options)

	cm, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("create azure chat model: %w", err)
	}
	return cm, nil
}

func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.ToolCallingChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ark provider requires ai.model (endpoint id)")
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}
	modelCfg.Temperature, modelCfg.MaxTokens, modelCfg.TopP = sampling(cfg.Options)

	cm, err := arkext.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}
	return cm, nil
}

// sampling converts configured options; zero means provider default
func sampling(opts config.AIOptionsConfig) (temperature *float32, maxTokens *int, topP *float32) {
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		temperature = &t
	}
	if opts.MaxTokens > 0 {
		m := opts.MaxTokens
		maxTokens = &m
	}
	if opts.TopP > 0 {
		p := float32(opts.TopP)
		topP = &p
	}
	return temperature, maxTokens, topP
}
