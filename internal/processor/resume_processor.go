package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"resume-insight/internal/logger"
	"resume-insight/internal/parser"
	"resume-insight/internal/tracing"
	"resume-insight/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("processor")

// Components 处理流程依赖的组件
type Components struct {
	PDFExtractor    PDFExtractor
	RecordExtractor RecordExtractor
}

// Settings 纯配置项
type Settings struct {
	Logger *log.Logger
	// Debug 为 true 时在结果中保留提取的全文
	Debug bool
}

// ComponentOpt 组件选项
type ComponentOpt func(*Components)

// SettingOpt 设置选项
type SettingOpt func(*Settings)

// WithPDFExtractor 设置PDF提取器
func WithPDFExtractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithRecordExtractor 设置字段提取器
func WithRecordExtractor(extractor RecordExtractor) ComponentOpt {
	return func(c *Components) {
		c.RecordExtractor = extractor
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) SettingOpt {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithDebug 设置调试模式
func WithDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// ResumeProcessor 串联 PDF提取 -> 模型提取 -> 扁平化
type ResumeProcessor struct {
	components Components
	settings   Settings
}

// NewResumeProcessor 创建处理器，缺少组件时返回错误
func NewResumeProcessor(compOpts []ComponentOpt, setOpts ...SettingOpt) (*ResumeProcessor, error) {
	p := &ResumeProcessor{
		settings: Settings{Logger: log.New(io.Discard, "", 0)},
	}
	for _, opt := range compOpts {
		opt(&p.components)
	}
	for _, opt := range setOpts {
		opt(&p.settings)
	}

	if p.components.PDFExtractor == nil {
		return nil, errors.New("PDF提取器未初始化")
	}
	if p.components.RecordExtractor == nil {
		return nil, errors.New("字段提取器未初始化")
	}
	return p, nil
}

// IsPDFFilename 文件名是否以 .pdf 结尾（不区分大小写）
func IsPDFFilename(filename string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".pdf")
}

// ProcessUpload 处理一次上传：校验文件名 -> 提取文本 -> 调用模型 -> 扁平化
func (p *ResumeProcessor) ProcessUpload(ctx context.Context, requestID string, filename string, data []byte) (*ProcessResult, error) {
	ctx, span := tracer.Start(ctx, "ProcessUpload",
		trace.WithAttributes(
			attribute.String("request_id", requestID),
			attribute.String("file.name", tracing.MaskFilename(filename)),
			attribute.Int("file.size", len(data)),
		))
	defer span.End()

	ctx = logger.WithRequestID(ctx, requestID)
	zl := logger.Ctx(ctx)
	start := time.Now()

	if !IsPDFFilename(filename) {
		err := NewUnsupportedFileError(requestID, filename)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		zl.Warn().Str("filename", tracing.MaskFilename(filename)).Msg("拒绝非PDF文件")
		return nil, err
	}

	text, metadata, err := p.extractText(ctx, requestID, filename, data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypePDF)
		zl.Error().Err(err).Msg("PDF文本提取失败")
		return nil, err
	}

	record, cleaned, err := p.extractRecord(ctx, requestID, text)
	if err != nil {
		errType := tracing.ErrorTypeLLM
		if errors.Is(err, ErrMalformedModelResponse) {
			errType = tracing.ErrorTypeParse
		} else if errors.Is(err, ErrUpstreamTimeout) {
			errType = tracing.ErrorTypeTimeout
		}
		tracing.RecordError(span, err, errType)
		zl.Error().Err(err).Msg("模型字段提取失败")
		return nil, err
	}

	_, flattenSpan := tracer.Start(ctx, "FlattenResume")
	view := FlattenResume(record)
	flattenSpan.SetAttributes(
		attribute.String("resume.full_name", tracing.SafeAttributeValue("Full Name", view.FullName, tracing.DefaultMaxLength)),
		attribute.Int("resume.certifications", len(view.Certifications)),
		attribute.Int("resume.languages", len(view.Languages)),
	)
	flattenSpan.End()

	zl.Info().
		Int("text_length", len(text)).
		Int("record_fields", len(record)).
		Dur("duration", time.Since(start)).
		Msg("简历处理完成")

	result := &ProcessResult{
		RequestID:     requestID,
		Metadata:      metadata,
		Record:        record,
		SanitizedJSON: cleaned,
		View:          view,
	}
	if p.settings.Debug {
		result.Text = text
	}
	return result, nil
}

func (p *ResumeProcessor) extractText(ctx context.Context, requestID, filename string, data []byte) (text string, metadata map[string]interface{}, err error) {
	ctx, span := tracer.Start(ctx, "ExtractText")
	defer span.End()

	// 第三方PDF库遇到畸形文件时可能 panic
	defer func() {
		if r := recover(); r != nil {
			err = NewExtractionError(requestID, fmt.Sprintf("panic: %v", r))
			tracing.RecordError(span, err, tracing.ErrorTypePDF)
		}
	}()

	text, metadata, err = p.components.PDFExtractor.ExtractTextFromBytes(ctx, data, filename, map[string]interface{}{
		"request_id": requestID,
	})
	if err != nil {
		wrapped := NewExtractionError(requestID, err.Error())
		tracing.RecordError(span, wrapped, tracing.ErrorTypePDF)
		return "", nil, wrapped
	}

	span.SetAttributes(attribute.Int("text.length", len(text)))
	if strings.TrimSpace(text) == "" {
		wrapped := NewEmptyDocumentError(requestID)
		tracing.RecordError(span, wrapped, tracing.ErrorTypePDF)
		return "", nil, wrapped
	}
	return text, metadata, nil
}

func (p *ResumeProcessor) extractRecord(ctx context.Context, requestID, text string) (types.ResumeRecord, string, error) {
	ctx, span := tracer.Start(ctx, "ExtractRecord")
	defer span.End()

	record, cleaned, err := p.components.RecordExtractor.ExtractRecord(ctx, text)
	if err != nil {
		var wrapped error
		switch {
		case errors.Is(err, parser.ErrInvalidLLMJSON):
			wrapped = NewMalformedResponseError(requestID, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			wrapped = NewUpstreamTimeoutError(requestID, err.Error())
		default:
			wrapped = NewUpstreamError(requestID, err.Error())
		}
		tracing.RecordError(span, wrapped, tracing.ErrorTypeLLM)
		p.settings.Logger.Printf("[ResumeProcessor] 请求 %s 字段提取失败: %v", requestID, err)
		return nil, cleaned, wrapped
	}

	span.SetAttributes(
		attribute.Int("record.fields", len(record)),
		attribute.Int("model.output_length", len(cleaned)),
	)
	return record, cleaned, nil
}
