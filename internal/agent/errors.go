package agent

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion 模型返回了成功状态但没有任何候选内容
var ErrEmptyCompletion = errors.New("模型未返回任何内容")

// StatusError 上游模型服务返回的非成功HTTP状态
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API 请求失败，状态 %d: %s", e.Provider, e.StatusCode, e.Body)
}

// HTTPStatus 供重试逻辑判断 429 / 5xx
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}
