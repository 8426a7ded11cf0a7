package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"resume-insight/internal/tracing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DashScope 的 OpenAI 兼容接口
	openAICompatibleQwenBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	defaultQwenModelName        = "qwen-plus"

	chatCompletionsPath = "/chat/completions"
)

// OpenAICompatibleChatModel 通过 OpenAI chat-completions 协议访问模型（通义千问、OpenAI 等）
type OpenAICompatibleChatModel struct {
	client      openai.Client
	modelName   string
	baseURL     string
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
	logger      *log.Logger
}

// OpenAIOption 客户端配置选项
type OpenAIOption func(*OpenAICompatibleChatModel)

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(m *OpenAICompatibleChatModel) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float64) OpenAIOption {
	return func(m *OpenAICompatibleChatModel) {
		m.temperature = &t
	}
}

// WithMaxTokens 设置最大输出 token 数，<=0 表示不限制
func WithMaxTokens(n int) OpenAIOption {
	return func(m *OpenAICompatibleChatModel) {
		m.maxTokens = n
	}
}

// WithOpenAILogger 设置日志
func WithOpenAILogger(l *log.Logger) OpenAIOption {
	return func(m *OpenAICompatibleChatModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// NormalizeBaseURL 接受基础地址或完整的 chat/completions 地址，返回 SDK 使用的基础地址
func NormalizeBaseURL(apiURL string) string {
	u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if u == "" {
		return openAICompatibleQwenBaseURL
	}
	return strings.TrimSuffix(u, chatCompletionsPath)
}

// NewOpenAICompatibleChatModel 创建一个 OpenAI 兼容的模型客户端
func NewOpenAICompatibleChatModel(apiKey string, modelName string, apiURL string, opts ...OpenAIOption) (*OpenAICompatibleChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultQwenModelName
	}

	m := &OpenAICompatibleChatModel{
		modelName:  mn,
		baseURL:    NormalizeBaseURL(apiURL),
		httpClient: &http.Client{},
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}

	// 重试由 ratelimit 代理统一负责，SDK 自身不重试
	m.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(m.baseURL),
		option.WithHTTPClient(m.httpClient),
		option.WithMaxRetries(0),
	)

	m.logger.Printf("使用 OpenAI 兼容 LLM 客户端，Base URL: %s, 模型: %s", m.baseURL, mn)
	return m, nil
}

func toOpenAIMessages(messages []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(msg.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// Generate 实现 model.BaseChatModel 接口，返回第一个候选
func (m *OpenAICompatibleChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.modelName,
		Messages: toOpenAIMessages(messages),
	}
	if m.temperature != nil {
		params.Temperature = openai.Float(*m.temperature)
	}
	if m.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(m.maxTokens))
	}

	m.logger.Printf("[OpenAI兼容模型] 发送请求到 %s，模型 %s，消息数 %d", m.baseURL, m.modelName, len(params.Messages))

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body := apiErr.Message
			if body == "" {
				body = apiErr.RawJSON()
			}
			return nil, &StatusError{
				Provider:   "openai-compatible",
				StatusCode: apiErr.StatusCode,
				Body:       tracing.TruncateString(body, tracing.MaxModelOutputLength),
			}
		}
		return nil, fmt.Errorf("调用 chat completions 失败: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := completion.Choices[0].Message.Content
	m.logger.Printf("[OpenAI兼容模型] 收到响应，候选数 %d，内容 %d 字节", len(completion.Choices), len(content))
	return schema.AssistantMessage(content, nil), nil
}

// Stream 以单条消息的流返回 Generate 的结果
func (m *OpenAICompatibleChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

var _ model.BaseChatModel = (*OpenAICompatibleChatModel)(nil)
