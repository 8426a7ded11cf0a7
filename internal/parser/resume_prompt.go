package parser

import "strings"

const resumePlaceholder = "{resume}"

// resumePromptTemplate 模型原样接收的指令，字段名与 types.Field* 一致
const resumePromptTemplate = `You are resume parsing assistant. Given the following resume text, extract all the important details and return them in a well structured JSOn format.
      The resume text is as follows:
      {resume}
      Extract and include the following:
      - Full Name
      - Contact Number
      - Email Address
      - Location
      - Skills (Technical and Non-Technical, separately if possible)
      - Education
      - Work Experience(including company name, role and responsibilities)
      - Certifications
      - Languages spoken
      - Suggested Resume Category(based on the skills and experience)
      - Recommended Job Roles (based on the candidate's skills and experience)

      Return the response in JSON format.
`

// BuildResumePrompt 将简历文本原样嵌入指令模板
func BuildResumePrompt(resumeText string) string {
	// 只替换一次，简历正文里出现的 "{resume}" 保持原样
	return strings.Replace(resumePromptTemplate, resumePlaceholder, resumeText, 1)
}
