package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// LedongthucPDFExtractor 逐页读取PDF并拼接每页的纯文本
type LedongthucPDFExtractor struct {
	logger  *log.Logger
	timeout time.Duration
}

// LedongthucPDFOption 配置选项
type LedongthucPDFOption func(*LedongthucPDFExtractor)

// WithLedongthucLogger 配置自定义日志记录器
func WithLedongthucLogger(logger *log.Logger) LedongthucPDFOption {
	return func(e *LedongthucPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLedongthucTimeout 配置解析超时
func WithLedongthucTimeout(timeout time.Duration) LedongthucPDFOption {
	return func(e *LedongthucPDFExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewLedongthucPDFExtractor 创建逐页PDF提取器
func NewLedongthucPDFExtractor(options ...LedongthucPDFOption) *LedongthucPDFExtractor {
	e := &LedongthucPDFExtractor{
		logger:  log.New(os.Stderr, "[PDF逐页解析] ", log.LstdFlags),
		timeout: DefaultPDFTimeout,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

type pageResult struct {
	text  string
	pages int
	err   error
}

// ExtractTextFromReader 读取全部内容后逐页解析
func (e *LedongthucPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", extraMeta, fmt.Errorf("read PDF %s: %w", uri, err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, extraMeta)
}

// ExtractTextFromBytes 逐页提取文本，页与页之间直接拼接
func (e *LedongthucPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error) {
	if extraMeta == nil {
		extraMeta = make(map[string]interface{})
	}
	startTime := time.Now()
	e.logger.Printf("开始逐页提取PDF文本 (URI: %s, %d 字节)", uri, len(data))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// 库本身不支持 context，解析放到 goroutine 中以便超时返回
	done := make(chan pageResult, 1)
	go func() {
		done <- readPages(data)
	}()

	var res pageResult
	select {
	case <-ctx.Done():
		e.logger.Printf("PDF解析超时或被取消 (URI: %s): %v", uri, ctx.Err())
		return "", extraMeta, fmt.Errorf("ledongthuc PDF parser for URI %s: %w", uri, ctx.Err())
	case res = <-done:
	}

	duration := time.Since(startTime)
	if res.err != nil {
		e.logger.Printf("逐页提取PDF失败: %s (用时 %.2f秒)", res.err, duration.Seconds())
		return "", extraMeta, fmt.Errorf("ledongthuc PDF parser failed for URI %s: %w", uri, res.err)
	}

	metadata := make(map[string]interface{}, len(extraMeta)+4)
	for k, v := range extraMeta {
		metadata[k] = v
	}
	metadata["engine"] = "ledongthuc"
	metadata["page_count"] = res.pages
	metadata["processing_duration_ms"] = duration.Milliseconds()
	metadata["text_length"] = len(res.text)

	e.logger.Printf("逐页提取完成: %d 页, %d 个字符 (用时 %.2f秒)", res.pages, len(res.text), duration.Seconds())
	return res.text, metadata, nil
}

func readPages(data []byte) (res pageResult) {
	// 库在遇到损坏的文件时可能 panic
	defer func() {
		if r := recover(); r != nil {
			res = pageResult{err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pageResult{err: err}
	}

	var sb strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return pageResult{err: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(text)
	}
	return pageResult{text: sb.String(), pages: total}
}
