package parser

import (
	"regexp"
	"strings"
)

// SanitizeStep 模型输出清洗中的一步文本修补
type SanitizeStep struct {
	Name  string
	Apply func(string) string
}

// RE2 的 \s 只匹配 ASCII 空白，补上 \v、NEL 与 Unicode 空格
var (
	adjacentObjectsRe = regexp.MustCompile(`\}[\s\v\x{85}\p{Z}]*\{`)
	adjacentArraysRe  = regexp.MustCompile(`\][\s\v\x{85}\p{Z}]*\[`)
)

// sanitizeSteps 按顺序执行。截断必须在补逗号之前
var sanitizeSteps = []SanitizeStep{
	{Name: "strip_code_fences", Apply: stripCodeFences},
	{Name: "trim_space", Apply: strings.TrimSpace},
	{Name: "truncate_after_last_brace", Apply: truncateAfterLastBrace},
	{Name: "comma_between_objects", Apply: commaBetweenObjects},
	{Name: "comma_between_arrays", Apply: commaBetweenArrays},
}

// SanitizeSteps 返回清洗步骤的副本
func SanitizeSteps() []SanitizeStep {
	steps := make([]SanitizeStep, len(sanitizeSteps))
	copy(steps, sanitizeSteps)
	return steps
}

// SanitizeJSON 将模型原始输出修补为尽可能可解析的JSON文本。
// 这不是通用的JSON修复器，结果仍可能无法解析，由调用方处理
func SanitizeJSON(raw string) string {
	out := raw
	for _, step := range sanitizeSteps {
		out = step.Apply(out)
	}
	return out
}

// stripCodeFences 删除任意位置的 "```json" 与 "```"
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// truncateAfterLastBrace 丢弃最后一个 '}' 之后的内容（模型的解释性文字等）
func truncateAfterLastBrace(s string) string {
	if i := strings.LastIndex(s, "}"); i != -1 {
		return s[:i+1]
	}
	return s
}

// commaBetweenObjects "}  {" -> "},{"
func commaBetweenObjects(s string) string {
	return adjacentObjectsRe.ReplaceAllString(s, "},{")
}

// commaBetweenArrays "]  [" -> "],["
func commaBetweenArrays(s string) string {
	return adjacentArraysRe.ReplaceAllString(s, "],[")
}
