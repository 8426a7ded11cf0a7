package parser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"resume-insight/internal/agent"
	"resume-insight/internal/types"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResumePrompt(t *testing.T) {
	text := "Jane Doe\nSenior Go Engineer\njane@mail.com"
	prompt := BuildResumePrompt(text)

	assert.Contains(t, prompt, text, "简历文本原样嵌入")
	assert.NotContains(t, prompt, resumePlaceholder)
	for _, field := range []string{
		"Full Name", "Contact Number", "Email Address", "Location",
		"Skills (Technical and Non-Technical, separately if possible)",
		"Education", "Work Experience", "Certifications", "Languages spoken",
		"Suggested Resume Category", "Recommended Job Roles",
	} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, "Return the response in JSON format.")
}

func TestBuildResumePromptDeterministic(t *testing.T) {
	assert.Equal(t, BuildResumePrompt("same"), BuildResumePrompt("same"))

	// 正文中的占位符不再被替换
	prompt := BuildResumePrompt("literal {resume} token")
	assert.Contains(t, prompt, "literal {resume} token")
	assert.Equal(t, 1, strings.Count(prompt, "{resume}"))
}

func TestExtractRecordSuccess(t *testing.T) {
	reply := "```json\n{\"Full Name\": \"Jane Doe\", \"Contact Number\": 9876543210, \"Skills\": {\"Technical Skills\": [\"Go\"]}}\n```\nHope this helps!"
	mock := agent.NewMockChatClient(reply, nil)
	extractor := NewLLMResumeExtractor(mock, quietLogger())

	record, cleaned, err := extractor.ExtractRecord(context.Background(), "resume body")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", record.String(types.FieldFullName, ""))
	assert.Equal(t, json.Number("9876543210"), record[types.FieldContactNumber], "数字保持原样，不转为浮点")
	assert.Equal(t, "9876543210", record.String(types.FieldContactNumber, ""))
	assert.True(t, strings.HasPrefix(cleaned, "{"))
	assert.True(t, strings.HasSuffix(cleaned, "}"))

	msgs := mock.GetReceivedMessages()
	require.Len(t, msgs, 1, "只发送一条用户消息")
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, BuildResumePrompt("resume body"), msgs[0].Content)
}

func TestExtractRecordRepairsAdjacentObjects(t *testing.T) {
	reply := `{"Full Name": "A", "Education": [{"Degree": "BSc"} {"Degree": "MSc"}]}`
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient(reply, nil), nil)

	record, _, err := extractor.ExtractRecord(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, record.List(types.FieldEducation), 2)
}

func TestExtractRecordLLMFailure(t *testing.T) {
	upstream := errors.New("connection reset by peer")
	extractor := NewLLMResumeExtractor(agent.NewMockChatClient("", upstream), nil)

	_, _, err := extractor.ExtractRecord(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMCallFailed)
	assert.ErrorIs(t, err, upstream, "保留原始错误")
}

func TestExtractRecordInvalidJSON(t *testing.T) {
	cases := map[string]string{
		"prose":          "Sorry, I cannot parse this resume.",
		"empty":          "   ",
		"top-level list": `["a", "b"]`,
		"two objects":    `{"a":1}{"b":2}`,
		"broken":         `{"Full Name": "Jane",}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			extractor := NewLLMResumeExtractor(agent.NewMockChatClient(reply, nil), nil)
			record, _, err := extractor.ExtractRecord(context.Background(), "x")
			assert.Nil(t, record)
			assert.ErrorIs(t, err, ErrInvalidLLMJSON)
		})
	}
}

func TestExtractRecordCustomPrompt(t *testing.T) {
	mock := agent.NewMockChatClient(`{}`, nil)
	extractor := NewLLMResumeExtractor(mock, nil, WithPromptBuilder(func(s string) string { return "P:" + s }))

	record, _, err := extractor.ExtractRecord(context.Background(), "body")
	require.NoError(t, err)
	assert.Empty(t, record)
	assert.Equal(t, "P:body", mock.GetReceivedMessages()[0].Content)
}
