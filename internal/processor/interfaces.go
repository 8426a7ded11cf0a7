package processor

import (
	"context"
	"io"

	"resume-insight/internal/types"
)

// ProcessResult 一次上传的处理结果
type ProcessResult struct {
	RequestID string

	// 提取的文本
	Text string

	// 提取器返回的元数据（页数、耗时等）
	Metadata map[string]interface{}

	// 模型返回并解析后的原始记录
	Record types.ResumeRecord

	// 清洗后的模型输出
	SanitizedJSON string

	// 交给展示层的扁平化视图
	View *types.ResumeView
}

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, extraMeta map[string]interface{}) (string, map[string]interface{}, error)
}

// RecordExtractor 把简历文本转换为结构化记录（提示词 + 模型调用 + 清洗 + 解析）
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, text string) (types.ResumeRecord, string, error)
}

// UploadProcessor 处理单个上传文件，供 HTTP 层依赖
type UploadProcessor interface {
	ProcessUpload(ctx context.Context, requestID string, filename string, data []byte) (*ProcessResult, error)
}
