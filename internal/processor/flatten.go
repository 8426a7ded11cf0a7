package processor

import (
	"strings"

	"resume-insight/internal/types"
)

const (
	listSeparator      = ", "
	educationSeparator = " "
	workSeparator      = "\n"
	workPlaceholder    = "N/A"
)

// FlattenResume 把模型返回的记录转换为展示层使用的扁平视图。
// 任何字段缺失都不会报错：教育经历缺失子字段用空串，工作经历缺失子字段用 "N/A"
func FlattenResume(record types.ResumeRecord) *types.ResumeView {
	if record == nil {
		record = types.ResumeRecord{}
	}

	skills := record.Map(types.FieldSkills)

	return &types.ResumeView{
		FullName:                record.String(types.FieldFullName, ""),
		ContactNumber:           record.String(types.FieldContactNumber, ""),
		EmailAddress:            record.String(types.FieldEmailAddress, ""),
		Location:                record.String(types.FieldLocation, ""),
		TechnicalSkills:         joinList(skills.List(types.FieldTechnicalSkills)),
		NonTechnicalSkills:      joinList(skills.List(types.FieldNonTechnicalSkills)),
		Education:               flattenEducation(record.List(types.FieldEducation)),
		WorkExperience:          flattenWorkExperience(record.List(types.FieldWorkExperience)),
		Certifications:          record.StringList(types.FieldCertifications),
		Languages:               record.StringList(types.FieldLanguagesSpoken),
		SuggestedResumeCategory: record.String(types.FieldSuggestedResumeCategory, ""),
		RecommendedJobRoles:     joinList(record.List(types.FieldRecommendedJobRoles)),
	}
}

func joinList(items []interface{}) string {
	return types.DisplayText(items, listSeparator)
}

// "<Degree> in <University> (Graduated:<Graduation Date>)"，多条以空格连接
func flattenEducation(entries []interface{}) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		edu := types.AsRecord(entry)
		lines = append(lines,
			edu.String(types.FieldDegree, "")+
				" in "+edu.String(types.FieldUniversity, "")+
				" (Graduated:"+edu.String(types.FieldGraduationDate, "")+")")
	}
	return strings.Join(lines, educationSeparator)
}

// "<Job Title> at <Company Name> (<Years>)\nResponsibilities:\n<Responsibilities>"，多条以换行连接
func flattenWorkExperience(entries []interface{}) string {
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		job := types.AsRecord(entry)

		responsibilities := workPlaceholder
		if v, ok := job.Lookup(types.FieldResponsibilities); ok {
			// 职责列表逐行展示
			responsibilities = types.DisplayText(v, "\n")
		}

		blocks = append(blocks,
			job.String(types.FieldJobTitle, workPlaceholder)+
				" at "+job.String(types.FieldCompanyName, workPlaceholder)+
				" ("+job.String(types.FieldYearsOfExperience, workPlaceholder)+")"+
				"\nResponsibilities:\n"+responsibilities)
	}
	return strings.Join(blocks, workSeparator)
}
