package ratelimit

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// RateLimitedChatModel 对模型调用做限流、单次超时和重试的代理
type RateLimitedChatModel struct {
	original    model.BaseChatModel
	rateLimiter *TokenBucket
	callTimeout time.Duration
	logger      *log.Logger
}

// NewRateLimitedChatModel 创建一个新的限流模型代理
func NewRateLimitedChatModel(original model.BaseChatModel, qpm int) *RateLimitedChatModel {
	return &RateLimitedChatModel{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2), // 容量为QPM的一半，允许一定的突发流量
		logger:      log.New(io.Discard, "", 0),
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedChatModel) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedChatModel {
	rl.rateLimiter.WithRetryPolicy(waitTime, maxRetries)
	return rl
}

// WithCallTimeout 设置单次调用超时，<=0 表示只受上游 context 约束
func (rl *RateLimitedChatModel) WithCallTimeout(timeout time.Duration) *RateLimitedChatModel {
	rl.callTimeout = timeout
	return rl
}

// WithLogger 设置重试日志
func (rl *RateLimitedChatModel) WithLogger(logger *log.Logger) *RateLimitedChatModel {
	if logger != nil {
		rl.logger = logger
	}
	return rl
}

func (rl *RateLimitedChatModel) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if rl.callTimeout > 0 {
		return context.WithTimeout(ctx, rl.callTimeout)
	}
	return context.WithCancel(ctx)
}

// Generate 代理Generate方法，增加限流、超时和重试逻辑
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var response *schema.Message

	err := rl.rateLimiter.RetryWithBackoff(ctx, func(attempt int) error {
		if attempt > 0 {
			rl.logger.Printf("重试LLM调用 (第%d次)", attempt)
		}
		callCtx, cancel := rl.attemptContext(ctx)
		defer cancel()

		var genErr error
		response, genErr = rl.original.Generate(callCtx, messages, options...)
		if genErr != nil {
			rl.logger.Printf("LLM调用失败 (第%d次尝试): %v", attempt+1, genErr)
		}
		return genErr
	})

	return response, err
}

// Stream 代理Stream方法。流建立之后的读取不受单次超时约束
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]

	err := rl.rateLimiter.RetryWithBackoff(ctx, func(int) error {
		var streamErr error
		stream, streamErr = rl.original.Stream(ctx, messages, options...)
		return streamErr
	})

	return stream, err
}

var _ model.BaseChatModel = (*RateLimitedChatModel)(nil)

// NewLLMWithRateLimit 从配置参数创建带限流与重试的模型
func NewLLMWithRateLimit(original model.BaseChatModel, qpm int, maxRetries int, retryWaitTime time.Duration, callTimeout time.Duration, logger *log.Logger) *RateLimitedChatModel {
	if qpm <= 0 {
		qpm = 30
	}
	return NewRateLimitedChatModel(original, qpm).
		WithRetryPolicy(retryWaitTime, maxRetries).
		WithCallTimeout(callTimeout).
		WithLogger(logger)
}
