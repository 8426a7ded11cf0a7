package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

const defaultGeminiModelName = "gemini-1.5-pro"

// GeminiConfig Gemini 客户端配置
type GeminiConfig struct {
	APIKey    string
	ModelName string
	// BaseURL 为空时使用官方地址
	BaseURL     string
	Temperature *float32
	MaxTokens   int32
	Logger      *log.Logger
}

// GeminiChatModel 基于 google.golang.org/genai 实现 eino 的 BaseChatModel
type GeminiChatModel struct {
	client    *genai.Client
	modelName string
	genConfig *genai.GenerateContentConfig
	logger    *log.Logger
}

// NewGeminiChatModel 创建 Gemini 模型客户端
func NewGeminiChatModel(ctx context.Context, cfg GeminiConfig) (*GeminiChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	mn := strings.TrimSpace(cfg.ModelName)
	if mn == "" {
		mn = defaultGeminiModelName
	}
	// genai 的模型名不带 "models/" 前缀
	mn = strings.TrimPrefix(mn, "models/")

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	genConfig := &genai.GenerateContentConfig{}
	if cfg.Temperature != nil {
		genConfig.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		genConfig.MaxOutputTokens = cfg.MaxTokens
	}

	logger.Printf("使用 Gemini LLM 客户端，模型: %s", mn)
	return &GeminiChatModel{
		client:    client,
		modelName: mn,
		genConfig: genConfig,
		logger:    logger,
	}, nil
}

// Generate 系统消息转为 SystemInstruction，其余消息按角色映射为 user / model
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	contents, system := toGeminiContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("没有可发送给 Gemini 的消息")
	}

	cfg := *g.genConfig
	if system != nil {
		cfg.SystemInstruction = system
	}

	g.logger.Printf("[Gemini模型] 发送请求，模型 %s，消息数 %d", g.modelName, len(contents))

	result, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, &cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
			return nil, &StatusError{Provider: "gemini", StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
		}
		return nil, fmt.Errorf("Gemini GenerateContent 失败: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, ErrEmptyCompletion
	}

	return schema.AssistantMessage(result.Text(), nil), nil
}

// Stream 以单条消息的流返回 Generate 的结果
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toGeminiContents(messages []*schema.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents    []*genai.Content
		systemParts []string
	)
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			systemParts = append(systemParts, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(systemParts) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(systemParts, "\n"), genai.RoleUser)
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)
