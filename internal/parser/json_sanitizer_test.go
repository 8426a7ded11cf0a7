package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fenced with trailing notes", "```json\n{\"a\":1}\n```\ntrailing notes", `{"a":1}`},
		{"adjacent objects", `{"a":1}{"b":2}`, `{"a":1},{"b":2}`},
		{"adjacent objects with whitespace", "{\"a\":1}\n  \t{\"b\":2}", `{"a":1},{"b":2}`},
		{"adjacent arrays", `[1,2][3,4]`, `[1,2],[3,4]`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence markers mid text", "{\"a\":\"x```json y```\"}", `{"a":"x y"}`},
		{"no closing brace", "  no json here  ", "no json here"},
		{"empty", "", ""},
		{"nested adjacent objects", `{"list":[{"a":1} {"b":2}]}`, `{"list":[{"a":1},{"b":2}]}`},
		{"three objects", `{}{}{}`, `{},{},{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeJSON(tc.in))
		})
	}
}

func TestSanitizeJSONStepOrder(t *testing.T) {
	names := make([]string, 0)
	for _, step := range SanitizeSteps() {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{
		"strip_code_fences",
		"trim_space",
		"truncate_after_last_brace",
		"comma_between_objects",
		"comma_between_arrays",
	}, names)

	// 返回的是副本，修改不影响内部步骤
	steps := SanitizeSteps()
	steps[0].Name = "changed"
	assert.Equal(t, "strip_code_fences", SanitizeSteps()[0].Name)
}

func TestSanitizeStepsIndividually(t *testing.T) {
	assert.Equal(t, "\n{}\n", stripCodeFences("```json\n{}\n```"))
	assert.Equal(t, `{"a":1}`, truncateAfterLastBrace(`{"a":1} -- thanks!`))
	assert.Equal(t, `[1]`, truncateAfterLastBrace(`[1]`), "没有 '}' 时保持不变")
	assert.Equal(t, `{},{}`, commaBetweenObjects("{} \r\n {}"))
	assert.Equal(t, `{} x {}`, commaBetweenObjects(`{} x {}`), "中间有非空白字符时不补逗号")
	assert.Equal(t, `[],[]`, commaBetweenArrays("[]\n[]"))

	assert.Equal(t, `{},{}`, commaBetweenObjects("{}\u00a0{}"))
	assert.Equal(t, `{},{}`, commaBetweenObjects("{}\v{}"))
	assert.Equal(t, `{},{}`, commaBetweenObjects("{}\u2003\u2028 {}"))
	assert.Equal(t, `[],[]`, commaBetweenArrays("[]\u00a0[]"))
	assert.Equal(t, `[],[]`, commaBetweenArrays("[]\v\u0085[]"))
}

// 顶层数组中包含对象时，最后一个 '}' 之后的 ']' 会被截掉，这是既有行为
func TestSanitizeJSONTruncatesTrailingBracket(t *testing.T) {
	assert.Equal(t, `[{"a":1}`, SanitizeJSON(`[{"a":1}]`))
}

func TestSanitizeJSONIdempotent(t *testing.T) {
	inputs := []string{
		`{"a":1}`,
		`{"Full Name":"Jane","Skills":{"Technical Skills":["Go","SQL"]}}`,
		`[1,2,3]`,
		`{"a":[1,2],"b":[3]}`,
		"  {\"a\": {\"b\": null}}  ",
	}
	for _, in := range inputs {
		once := SanitizeJSON(in)
		assert.Equal(t, once, SanitizeJSON(once), "input=%q", in)
	}
}

func TestSanitizeJSONProducesParsableOutput(t *testing.T) {
	raw := "Here is the parsed resume:\n```json\n{\n  \"Full Name\": \"Jane Doe\",\n  \"Education\": [\n    {\"Degree\": \"BSc\"}\n    {\"Degree\": \"MSc\"}\n  ]\n}\n```\nLet me know if you need anything else."

	// 前缀说明文字不会被清理，解析应失败
	var out map[string]interface{}
	require.Error(t, json.Unmarshal([]byte(SanitizeJSON(raw)), &out))

	// 从第一个 '{' 开始时可以解析，且缺失的逗号已补上
	clean := SanitizeJSON(raw[len("Here is the parsed resume:\n"):])
	require.NoError(t, json.Unmarshal([]byte(clean), &out))
	assert.Equal(t, "Jane Doe", out["Full Name"])
	assert.Len(t, out["Education"], 2)
}
