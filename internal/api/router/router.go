package router

import (
	"html/template"

	"resume-insight/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// RegisterRoutes 注册路由，tmpl 同时注册给引擎供 c.HTML 使用
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, tmpl *template.Template) {
	if tmpl != nil {
		h.SetHTMLTemplate(tmpl)
	}

	h.GET("/", resumeHandler.Index)
	h.POST("/upload_resume", resumeHandler.UploadResume)
	h.GET("/health", resumeHandler.Health)
}
