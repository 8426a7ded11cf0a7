package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"resume-insight/internal/agent"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 2)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "容量耗尽后应拒绝")
}

func TestTokenBucketWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, 1) // 每分钟一个令牌
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("wrap: %w", context.DeadlineExceeded), true},
		{&agent.StatusError{StatusCode: 429}, true},
		{&agent.StatusError{StatusCode: 503}, true},
		{&agent.StatusError{StatusCode: 401}, false},
		{&agent.StatusError{StatusCode: 400, Body: "timeout in body"}, false},
		{errors.New("read tcp: connection reset by peer"), true},
		{errors.New("invalid api key"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRetryableError(tc.err), "err=%v", tc.err)
	}
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	tb := NewTokenBucket(6000, 100).WithRetryPolicy(time.Millisecond, 3)
	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func(int) error {
		calls++
		return errors.New("invalid api key")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRateLimitedChatModelRetriesTransient(t *testing.T) {
	mock := agent.NewMockChatClientSequential([]agent.MockResponse{
		{Error: &agent.StatusError{StatusCode: 503}},
		{Error: errors.New("connection reset by peer")},
		{Content: `{"Full Name":"Jane"}`},
	})
	m := NewLLMWithRateLimit(mock, 6000, 3, time.Millisecond, time.Second, nil)

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.NoError(t, err)
	assert.Equal(t, `{"Full Name":"Jane"}`, msg.Content)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRateLimitedChatModelGivesUp(t *testing.T) {
	mock := agent.NewMockChatClient("", &agent.StatusError{StatusCode: 500})
	m := NewLLMWithRateLimit(mock, 6000, 2, time.Millisecond, time.Second, nil)

	_, err := m.Generate(context.Background(), nil)
	var statusErr *agent.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 3, mock.CallCount(), "首次调用 + 2 次重试")
}

func TestRateLimitedChatModelPerAttemptTimeout(t *testing.T) {
	mock := agent.NewMockChatClientSequential([]agent.MockResponse{
		{Content: "slow", Delay: time.Second},
		{Content: "fast"},
	})
	m := NewLLMWithRateLimit(mock, 6000, 1, time.Millisecond, 20*time.Millisecond, nil)

	msg, err := m.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "fast", msg.Content, "单次超时后重试")
}

func TestRateLimitedChatModelContextCancelled(t *testing.T) {
	mock := agent.NewMockChatClient("", errors.New("timeout"))
	m := NewLLMWithRateLimit(mock, 6000, 5, 50*time.Millisecond, 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Generate(ctx, nil)
	require.Error(t, err)
	assert.LessOrEqual(t, mock.CallCount(), 2, "上游取消后停止重试")
}

func TestRateLimitedChatModelStream(t *testing.T) {
	mock := agent.NewMockChatClient("streamed", nil)
	m := NewLLMWithRateLimit(mock, 6000, 0, 0, 0, nil)

	stream, err := m.Stream(context.Background(), nil)
	require.NoError(t, err)
	defer stream.Close()
	msg, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "streamed", msg.Content)
}
