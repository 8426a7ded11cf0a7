package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"resume-insight/internal/tracing"
	"resume-insight/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

var (
	// ErrLLMCallFailed 模型调用失败（网络、鉴权、限流、超时等）
	ErrLLMCallFailed = errors.New("llm call failed")
	// ErrInvalidLLMJSON 清洗后的模型输出不是JSON对象
	ErrInvalidLLMJSON = errors.New("invalid JSON from llm")
)

// LLMResumeExtractor 调用模型把简历文本转换为 ResumeRecord
type LLMResumeExtractor struct {
	llmModel model.BaseChatModel
	logger   *log.Logger

	// promptBuilder 默认为 BuildResumePrompt
	promptBuilder func(string) string
}

// LLMExtractorOption 是LLM提取器的配置选项
type LLMExtractorOption func(*LLMResumeExtractor)

// WithPromptBuilder 替换提示词构造函数
func WithPromptBuilder(builder func(string) string) LLMExtractorOption {
	return func(e *LLMResumeExtractor) {
		if builder != nil {
			e.promptBuilder = builder
		}
	}
}

// NewLLMResumeExtractor 创建LLM字段提取器
func NewLLMResumeExtractor(llmModel model.BaseChatModel, logger *log.Logger, options ...LLMExtractorOption) *LLMResumeExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e := &LLMResumeExtractor{
		llmModel:      llmModel,
		logger:        logger,
		promptBuilder: BuildResumePrompt,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// ExtractRecord 构造提示词 -> 调用模型 -> 清洗 -> 解析
// 返回解析后的记录以及清洗后的文本（便于排查）
func (e *LLMResumeExtractor) ExtractRecord(ctx context.Context, text string) (types.ResumeRecord, string, error) {
	prompt := e.promptBuilder(text)
	messages := []*einoschema.Message{
		einoschema.UserMessage(prompt),
	}

	e.logger.Printf("[LLMResumeExtractor] Prompt: %d 字符, 简历文本: %d 字符", len(prompt), len(text))

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		e.logger.Printf("[LLMResumeExtractor] LLM调用失败: %v", err)
		return nil, "", fmt.Errorf("%w: %w", ErrLLMCallFailed, err)
	}
	if response == nil {
		return nil, "", fmt.Errorf("%w: empty response", ErrLLMCallFailed)
	}

	e.logger.Printf("[LLMResumeExtractor] LLM Response: %d 字符", len(response.Content))

	cleaned := SanitizeJSON(response.Content)
	record, err := parseRecord(cleaned)
	if err != nil {
		e.logger.Printf("[LLMResumeExtractor] 解析模型输出失败: %v, 清洗后开头: %q", err, tracing.MaskPII(tracing.TruncateString(cleaned, 40)))
		return nil, cleaned, fmt.Errorf("%w: %w", ErrInvalidLLMJSON, err)
	}
	return record, cleaned, nil
}

// parseRecord 要求顶层是JSON对象且其后没有多余内容
func parseRecord(cleaned string) (types.ResumeRecord, error) {
	if strings.TrimSpace(cleaned) == "" {
		return nil, errors.New("empty model output")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected content after top-level value")
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, want object", raw)
	}
	return types.ResumeRecord(obj), nil
}
