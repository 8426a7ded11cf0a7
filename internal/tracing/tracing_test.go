package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMaskPII(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"A":                   "*",
		"张三":                  "张*",
		"王小明":                 "王*明",
		"13812345678":         "13*******78",
		"myemail@example.com": "my***************om",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskPII(in), "input=%q", in)
	}
}

func TestMaskFilename(t *testing.T) {
	assert.Equal(t, "Ja*******CV.docx", MaskFilename("Jane_Doe_CV.docx"))
	assert.Equal(t, "张*.pdf", MaskFilename("张三.pdf"))
	assert.Equal(t, "", MaskFilename(""))

	long := MaskFilename(strings.Repeat("a", 500) + ".pdf")
	assert.True(t, strings.HasSuffix(long, ".pdf"))
	assert.LessOrEqual(t, len([]rune(long)), DefaultMaxLength+len(".pdf"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))

	long := strings.Repeat("x", 50) + strings.Repeat("y", 50)
	got := TruncateString(long, 23)
	assert.Equal(t, strings.Repeat("x", 10)+"..."+strings.Repeat("y", 10), got)
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "ja*********om", SafeAttributeValue("Email Address", "jane@mail.com", 100))
	assert.Equal(t, "13*******78", SafeAttributeValue("Contact Number", "13812345678", 100))
	assert.Equal(t, "Engineer", SafeAttributeValue("job_title", "Engineer", 100))
}

func TestRecordErrorSetsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New("boom"), ErrorTypeLLM)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "llm", attrs["error.type"])
	assert.Equal(t, "boom", attrs["error.message"])
}

func TestRecordHTTPErrorCategory(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "http")
	RecordHTTPError(span, errors.New("bad gateway"), 502)
	span.End()

	attrs := map[string]string{}
	for _, kv := range recorder.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "server_error", attrs["error.category"])
	assert.Equal(t, "502", attrs["http.status_code"])
}

func TestRecordErrorNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("x"), ErrorTypeInternal)
	})
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
