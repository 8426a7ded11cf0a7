package processor

import (
	"errors"
	"fmt"

	"resume-insight/internal/tracing"
)

// 定义基础错误类型
var (
	ErrUnsupportedFileType    = errors.New("Only PDF files are supported")
	ErrPDFExtractionFailed    = errors.New("提取简历文本失败")
	ErrEmptyDocument          = errors.New("PDF中没有可提取的文本")
	ErrUpstreamModel          = errors.New("调用模型服务失败")
	ErrUpstreamTimeout        = errors.New("模型服务响应超时")
	ErrMalformedModelResponse = errors.New("模型返回的内容无法解析为JSON")
)

// ErrorKind 对外暴露的错误分类
type ErrorKind string

const (
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindUnsupportedFileType    ErrorKind = "UnsupportedFileType"
	KindPDFExtractionError     ErrorKind = "PDFExtractionError"
	KindEmptyDocument          ErrorKind = "EmptyDocument"
	KindUpstreamModelError     ErrorKind = "UpstreamModelError"
	KindMalformedModelResponse ErrorKind = "MalformedModelResponse"
	KindInternal               ErrorKind = "InternalError"
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	RequestID string
	Op        string
	BaseErr   error
	Detail    string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 请求:%s): %s", e.BaseErr, e.Op, e.RequestID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 请求:%s)", e.BaseErr, e.Op, e.RequestID)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// Message 面向调用方的错误描述，不含内部细节
func (e *ResumeProcessError) Message() string {
	return e.BaseErr.Error()
}

// 错误构造函数

func NewUnsupportedFileError(requestID, filename string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "validate", BaseErr: ErrUnsupportedFileType, Detail: tracing.MaskFilename(filename)}
}

func NewExtractionError(requestID, detail string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "extract_text", BaseErr: ErrPDFExtractionFailed, Detail: detail}
}

func NewEmptyDocumentError(requestID string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "extract_text", BaseErr: ErrEmptyDocument}
}

func NewUpstreamError(requestID, detail string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "call_model", BaseErr: ErrUpstreamModel, Detail: detail}
}

func NewUpstreamTimeoutError(requestID, detail string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "call_model", BaseErr: ErrUpstreamTimeout, Detail: detail}
}

func NewMalformedResponseError(requestID, detail string) error {
	return &ResumeProcessError{RequestID: requestID, Op: "parse_response", BaseErr: ErrMalformedModelResponse, Detail: detail}
}

// KindOf 返回错误对应的分类，未知错误归为 InternalError
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFileType):
		return KindUnsupportedFileType
	case errors.Is(err, ErrPDFExtractionFailed):
		return KindPDFExtractionError
	case errors.Is(err, ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, ErrUpstreamModel), errors.Is(err, ErrUpstreamTimeout):
		return KindUpstreamModelError
	case errors.Is(err, ErrMalformedModelResponse):
		return KindMalformedModelResponse
	default:
		return KindInternal
	}
}

// HTTPStatus 错误分类对应的HTTP状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnsupportedFileType:
		return 415
	case KindPDFExtractionError, KindEmptyDocument:
		return 422
	case KindUpstreamModelError:
		if errors.Is(err, ErrUpstreamTimeout) {
			return 504
		}
		return 502
	case KindMalformedModelResponse:
		return 502
	case "":
		return 200
	default:
		return 500
	}
}

// PublicMessage 返回可直接给调用方的错误消息
func PublicMessage(err error) string {
	var pe *ResumeProcessError
	if errors.As(err, &pe) {
		return pe.Message()
	}
	return "内部错误"
}
