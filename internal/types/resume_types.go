package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// 模型输出中约定的字段名
const (
	FieldFullName                = "Full Name"
	FieldContactNumber           = "Contact Number"
	FieldEmailAddress            = "Email Address"
	FieldLocation                = "Location"
	FieldSkills                  = "Skills"
	FieldTechnicalSkills         = "Technical Skills"
	FieldNonTechnicalSkills      = "Non-Technical Skills"
	FieldEducation               = "Education"
	FieldDegree                  = "Degree"
	FieldUniversity              = "University"
	FieldGraduationDate          = "Graduation Date"
	FieldWorkExperience          = "Work Experience"
	FieldJobTitle                = "Job Title"
	FieldCompanyName             = "Company Name"
	FieldYearsOfExperience       = "Years of Experience"
	FieldResponsibilities        = "Responsibilities"
	FieldCertifications          = "Certifications"
	FieldLanguagesSpoken         = "Languages spoken"
	FieldSuggestedResumeCategory = "Suggested Resume Category"
	FieldRecommendedJobRoles     = "Recommended Job Roles"
)

// ResumeRecord 模型返回的简历结构，没有固定schema。
// 值可能是字符串、数字、布尔、嵌套的 map 或切片，所有字段都是可选的
type ResumeRecord map[string]interface{}

// Lookup 按字段名取值。先精确匹配，再做不区分大小写的匹配，
// 因为模型输出的字段名大小写并不稳定（"Languages spoken" / "Languages Spoken"）
// JSON null 视为字段缺失
func (r ResumeRecord) Lookup(key string) (interface{}, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[key]; ok {
		return v, v != nil
	}

	// 多个候选时按字典序取第一个，保证结果确定
	var candidates []string
	for k := range r {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Strings(candidates)
	v := r[candidates[0]]
	return v, v != nil
}

// String 返回字段的展示文本，缺失时返回 def
func (r ResumeRecord) String(key string, def string) string {
	v, ok := r.Lookup(key)
	if !ok {
		return def
	}
	return DisplayText(v, ", ")
}

// Map 返回嵌套的对象字段，缺失或类型不符时返回空记录
func (r ResumeRecord) Map(key string) ResumeRecord {
	v, ok := r.Lookup(key)
	if !ok {
		return ResumeRecord{}
	}
	return AsRecord(v)
}

// List 返回数组字段，缺失时返回空切片。
// 单个非数组值被视为只有一个元素的数组
func (r ResumeRecord) List(key string) []interface{} {
	v, ok := r.Lookup(key)
	if !ok {
		return []interface{}{}
	}
	switch val := v.(type) {
	case []interface{}:
		return val
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		if s, isStr := val.(string); isStr && strings.TrimSpace(s) == "" {
			return []interface{}{}
		}
		return []interface{}{val}
	}
}

// StringList 返回数组字段中每个元素的展示文本
func (r ResumeRecord) StringList(key string) []string {
	items := r.List(key)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, DisplayText(item, ", "))
	}
	return out
}

// AsRecord 将任意值转换为 ResumeRecord，非对象类型得到空记录
func AsRecord(v interface{}) ResumeRecord {
	switch val := v.(type) {
	case ResumeRecord:
		return val
	case map[string]interface{}:
		return ResumeRecord(val)
	default:
		return ResumeRecord{}
	}
}

// DisplayText 将任意JSON值转换为展示用字符串。
// 数组元素以 sep 连接；对象按键名排序输出为 "键: 值" 并以 "; " 连接
func DisplayText(v interface{}, sep string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, sep)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, DisplayText(item, sep))
		}
		return strings.Join(parts, sep)
	case ResumeRecord:
		return displayMap(val)
	case map[string]interface{}:
		return displayMap(val)
	default:
		return fmt.Sprint(val)
	}
}

func displayMap(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+DisplayText(m[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// ResumeView 交给展示层的扁平化简历视图。
// JSON 字段名与页面模板变量保持一致
type ResumeView struct {
	FullName                string   `json:"full_name"`
	ContactNumber           string   `json:"contact_number"`
	EmailAddress            string   `json:"email_address"`
	Location                string   `json:"location"`
	TechnicalSkills         string   `json:"technical_skills"`
	NonTechnicalSkills      string   `json:"non_technical_skills"`
	Education               string   `json:"education"`
	WorkExperience          string   `json:"work_experience"`
	Certifications          []string `json:"certifications"`
	Languages               []string `json:"language"`
	SuggestedResumeCategory string   `json:"suggested_resume_category"`
	RecommendedJobRoles     string   `json:"recommended_job_roles"`
}
