package handler

import (
	"context"
	"errors"
	"html/template"
	"io"
	"strings"
	"time"

	"resume-insight/internal/api/templates"
	"resume-insight/internal/constants"
	"resume-insight/internal/logger"
	"resume-insight/internal/processor"
	"resume-insight/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server/render"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ResumeHandler 简历上传相关的HTTP处理器
type ResumeHandler struct {
	processor processor.UploadProcessor
	html      render.HTMLProduction
}

// NewResumeHandler 创建一个新的简历处理器，页面直接用传入的模板渲染，不依赖引擎的 HTMLRender
func NewResumeHandler(p processor.UploadProcessor, tmpl *template.Template) *ResumeHandler {
	return &ResumeHandler{
		processor: p,
		html:      render.HTMLProduction{Template: tmpl},
	}
}

// Index 渲染上传表单
// GET /
func (h *ResumeHandler) Index(ctx context.Context, c *app.RequestContext) {
	c.Render(consts.StatusOK, h.html.Instance(templates.IndexName, templates.IndexData(nil)))
}

// Health 健康检查
// GET /health
func (h *ResumeHandler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// UploadResume 处理简历上传：提取文本 -> 模型抽取 -> 扁平化 -> 渲染结果
// POST /upload_resume
func (h *ResumeHandler) UploadResume(ctx context.Context, c *app.RequestContext) {
	requestID := newRequestID()
	c.Header(constants.RequestIDHeader, requestID)
	ctx = logger.WithRequestID(ctx, requestID)
	zl := logger.Ctx(ctx)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("request_id", requestID))

	fileHeader, err := c.FormFile(constants.ResumeFormField)
	if err != nil || fileHeader == nil {
		msg := constants.MsgNoFileUploaded
		if h.hasEmptyFileField(c) {
			msg = constants.MsgNoFileSelected
		}
		zl.Warn().Str("reason", msg).Msg("上传参数错误")
		tracing.RecordHTTPError(span, errors.New(msg), consts.StatusBadRequest)
		c.JSON(consts.StatusBadRequest, utils.H{"error": msg})
		return
	}
	if strings.TrimSpace(fileHeader.Filename) == "" {
		zl.Warn().Msg("上传文件名为空")
		tracing.RecordHTTPError(span, errors.New(constants.MsgNoFileSelected), consts.StatusBadRequest)
		c.JSON(consts.StatusBadRequest, utils.H{"error": constants.MsgNoFileSelected})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		zl.Error().Err(err).Msg("打开上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": constants.MsgReadFileFailed, "request_id": requestID})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		zl.Error().Err(err).Msg("读取上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": constants.MsgReadFileFailed, "request_id": requestID})
		return
	}

	zl.Info().
		Str("filename", tracing.MaskFilename(fileHeader.Filename)).
		Int("size", len(data)).
		Msg("收到简历上传")

	start := time.Now()
	result, err := h.processor.ProcessUpload(ctx, requestID, fileHeader.Filename, data)
	if err != nil {
		status := processor.HTTPStatus(err)
		tracing.RecordHTTPError(span, err, status)
		zl.Warn().Err(err).Int("status", status).Dur("duration", time.Since(start)).Msg("简历处理失败")
		c.JSON(status, utils.H{
			"error":      processor.PublicMessage(err),
			"kind":       processor.KindOf(err),
			"request_id": requestID,
		})
		return
	}

	zl.Info().Dur("duration", time.Since(start)).Msg("简历处理成功")

	if wantsJSON(c) {
		c.JSON(consts.StatusOK, result.View)
		return
	}
	c.Render(consts.StatusOK, h.html.Instance(templates.IndexName, templates.IndexData(result.View)))
}

// hasEmptyFileField 表单中有 resume 字段但没有选择文件。
// 浏览器未选择文件时会提交 filename="" 的空part，解析后只出现在普通字段里
func (h *ResumeHandler) hasEmptyFileField(c *app.RequestContext) bool {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return false
	}
	if files, ok := form.File[constants.ResumeFormField]; ok && len(files) > 0 {
		return true
	}
	_, ok := form.Value[constants.ResumeFormField]
	return ok
}

func wantsJSON(c *app.RequestContext) bool {
	return strings.Contains(strings.ToLower(string(c.GetHeader("Accept"))), "application/json")
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
