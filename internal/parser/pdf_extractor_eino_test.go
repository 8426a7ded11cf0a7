package parser

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestPDF 生成一个最小的合法PDF，每个参数一页
func buildTestPDF(pages ...string) []byte {
	var buf bytes.Buffer
	offsets := []int{}
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: pages, 3: font, 之后每页两个对象 (page + content)
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+i*2))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func quietLogger() *log.Logger {
	return log.New(bytes.NewBuffer(nil), "", 0)
}

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser)
	require.NotNil(t, extractor.logger, "PDF提取器应该有默认的logger")
	assert.Equal(t, DefaultPDFTimeout, extractor.timeout)

	customLogger := log.New(os.Stdout, "[测试PDF提取器] ", log.LstdFlags)
	custom, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(customLogger), WithEinoTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, customLogger, custom.logger, "应该使用提供的自定义logger")
	assert.Equal(t, time.Second, custom.timeout)

	// 非法值被忽略
	ignored, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(nil), WithEinoTimeout(-1))
	require.NoError(t, err)
	assert.NotNil(t, ignored.logger)
	assert.Equal(t, DefaultPDFTimeout, ignored.timeout)
}

func TestEinoExtractTextFromBytes(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(quietLogger()))
	require.NoError(t, err)

	data := buildTestPDF("Jane Doe Software Engineer", "Skills Go SQL")
	text, meta, err := extractor.ExtractTextFromBytes(ctx, data, "resume.pdf", map[string]interface{}{"request_id": "r-1"})
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe Software Engineer")
	assert.Contains(t, text, "Skills Go SQL")
	assert.Equal(t, "r-1", meta["request_id"], "额外元数据应保留")
	assert.Equal(t, "eino", meta["engine"])
	assert.Equal(t, len(text), meta["text_length"])
}

func TestEinoExtractTextFromBytesInvalid(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(quietLogger()))
	require.NoError(t, err)

	_, _, err = extractor.ExtractTextFromBytes(ctx, []byte("definitely not a pdf"), "garbage.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garbage.pdf")
}

// 真实简历文件存在时做一次端到端提取
func TestExtractRealResumeFile(t *testing.T) {
	candidates := []string{
		"testdata/resume.pdf",
		filepath.Join("..", "..", "testdata", "resume.pdf"),
	}
	var data []byte
	for _, path := range candidates {
		if b, err := os.ReadFile(path); err == nil {
			data = b
			break
		}
	}
	if data == nil {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	ctx := context.Background()
	einoExtractor, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(quietLogger()))
	require.NoError(t, err)
	text, _, err := einoExtractor.ExtractTextFromBytes(ctx, data, "resume.pdf", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(text))

	pageText, _, err := NewLedongthucPDFExtractor(WithLedongthucLogger(quietLogger())).ExtractTextFromBytes(ctx, data, "resume.pdf", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(pageText))
}
