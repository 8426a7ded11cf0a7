package constants

const (
	// ServiceName 服务名，用于日志与链路追踪
	ServiceName = "resume-insight"
	// Version 服务版本
	Version = "1.0.0"

	// ResumeFormField 上传表单中简历文件的字段名
	ResumeFormField = "resume"
	// RequestIDHeader 响应头中回传的请求ID
	RequestIDHeader = "X-Request-ID"
)

// 上传参数错误的返回消息
const (
	MsgNoFileUploaded = "No file uploaded"
	MsgNoFileSelected = "No file Selected"
	MsgReadFileFailed = "Failed to read uploaded file"
)
