package processor

import (
	"context"
	"log"

	"resume-insight/internal/agent"
	"resume-insight/internal/config"
	"resume-insight/internal/parser"
	"resume-insight/internal/ratelimit"

	"github.com/cloudwego/eino/components/model"
)

// BuildPDFExtractor 根据 pdf.engine 构建PDF解析器
func BuildPDFExtractor(ctx context.Context, cfg *config.Config, loggerProvider func(prefix string) *log.Logger) (PDFExtractor, error) {
	initLogger := loggerProvider("[PDFExtractorInit] ")
	timeout := cfg.PDFTimeout()

	if cfg.PDF.Engine == config.PDFEngineLedongthuc {
		initLogger.Println("使用 ledongthuc/pdf 逐页解析器...")
		return parser.NewLedongthucPDFExtractor(
			parser.WithLedongthucLogger(loggerProvider("[LedongthucPDF] ")),
			parser.WithLedongthucTimeout(timeout),
		), nil
	}

	initLogger.Println("使用 Eino 作为PDF解析器...")
	return parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(loggerProvider("[EinoPDF] ")),
		parser.WithEinoTimeout(timeout),
	)
}

// BuildChatModel 创建模型客户端并包装限流、单次超时和重试
func BuildChatModel(ctx context.Context, cfg *config.Config, loggerProvider func(prefix string) *log.Logger) (model.BaseChatModel, error) {
	base, err := agent.NewChatModel(ctx, cfg.LLM, loggerProvider("[LLM] "))
	if err != nil {
		return nil, err
	}
	return ratelimit.NewLLMWithRateLimit(
		base,
		cfg.LLM.QPM,
		cfg.LLM.MaxRetries,
		cfg.RetryWait(),
		cfg.LLMTimeout(),
		loggerProvider("[LLMRetry] "),
	), nil
}

// BuildResumeProcessor 从配置组装完整的处理流程
func BuildResumeProcessor(ctx context.Context, cfg *config.Config, loggerProvider func(prefix string) *log.Logger) (*ResumeProcessor, error) {
	pdfExtractor, err := BuildPDFExtractor(ctx, cfg, loggerProvider)
	if err != nil {
		return nil, err
	}
	chatModel, err := BuildChatModel(ctx, cfg, loggerProvider)
	if err != nil {
		return nil, err
	}
	recordExtractor := parser.NewLLMResumeExtractor(chatModel, loggerProvider("[LLMExtractor] "))

	return NewResumeProcessor(
		[]ComponentOpt{
			WithPDFExtractor(pdfExtractor),
			WithRecordExtractor(recordExtractor),
		},
		WithLogger(loggerProvider("[ResumeProcessor] ")),
		WithDebug(cfg.Logger.Level == "debug"),
	)
}
