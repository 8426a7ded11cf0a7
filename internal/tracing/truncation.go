package tracing

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxModelOutputLength 上游错误响应体在错误信息中的最大长度
	MaxModelOutputLength = 300
)

// piiKeywords 字段名包含这些关键字时，值需要掩码
var piiKeywords = []string{
	"email", "phone", "contact", "name", "姓名", "address", "地址", "location",
	"password", "secret", "token", "api_key",
}

// SafeAttributeValue 返回可安全写入日志或 span 的属性值：
// 敏感字段做掩码处理，其余超长值截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 对个人敏感信息进行掩码处理
// "张三" -> "张*", "王小明" -> "王*明", "13812345678" -> "13*******78"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	n := len(runes)
	switch {
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// MaskFilename 上传文件名常含姓名，掩码主干部分，保留扩展名便于排查
// "Jane_Doe_CV.docx" -> "Ja*******CV.docx"
func MaskFilename(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 16 {
		ext = ""
	}
	stem := strings.TrimSuffix(filename, ext)
	return MaskPII(TruncateString(stem, DefaultMaxLength)) + ext
}

// TruncateString 超长时保留首尾，中间以 "..." 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}
