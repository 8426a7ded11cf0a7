package agent

import (
	"context"
	"fmt"
	"log"

	"resume-insight/internal/config"

	"github.com/cloudwego/eino/components/model"
)

// NewChatModel 按 llm.provider 创建底层模型客户端（不含限流与重试）
func NewChatModel(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		gc := GeminiConfig{
			APIKey:    cfg.APIKey,
			ModelName: cfg.Model,
			BaseURL:   cfg.APIURL,
			MaxTokens: int32(cfg.MaxTokens),
			Logger:    logger,
		}
		if cfg.Temperature > 0 {
			t := float32(cfg.Temperature)
			gc.Temperature = &t
		}
		return NewGeminiChatModel(ctx, gc)

	case config.ProviderQwen, config.ProviderOpenAI:
		opts := []OpenAIOption{WithOpenAILogger(logger), WithMaxTokens(cfg.MaxTokens)}
		if cfg.Temperature > 0 {
			opts = append(opts, WithTemperature(cfg.Temperature))
		}
		return NewOpenAICompatibleChatModel(cfg.APIKey, cfg.Model, cfg.APIURL, opts...)

	default:
		return nil, fmt.Errorf("不支持的LLM提供方: %q", cfg.Provider)
	}
}
