package templates

import (
	"embed"
	"html/template"

	"resume-insight/internal/types"
)

// IndexName 上传页模板名
const IndexName = "index.html"

//go:embed *.html
var files embed.FS

// Load 解析内嵌的页面模板
func Load() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}

// IndexData 将扁平化结果转换为模板变量，view 为空时只渲染上传表单
func IndexData(view *types.ResumeView) map[string]interface{} {
	if view == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"has_result":                true,
		"full_name":                 view.FullName,
		"contact_number":            view.ContactNumber,
		"email_address":             view.EmailAddress,
		"location":                  view.Location,
		"technical_skills":          view.TechnicalSkills,
		"non_technical_skills":      view.NonTechnicalSkills,
		"education":                 view.Education,
		"work_experience":           view.WorkExperience,
		"certifications":            view.Certifications,
		"language":                  view.Languages,
		"suggested_resume_category": view.SuggestedResumeCategory,
		"recommended_job_roles":     view.RecommendedJobRoles,
	}
}
