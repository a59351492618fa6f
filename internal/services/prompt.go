package services

import (
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

type PromptBuilder struct {
	maxChars int
}

func NewPromptBuilder(maxChars int) *PromptBuilder {
	return &PromptBuilder{maxChars: maxChars}
}

// BuildReviewPrompt creates the resume review prompt. The job description is
// only included when present. Prompts longer than maxChars are cut.
func (pb *PromptBuilder) BuildReviewPrompt(resumeText, jobDescription string) (string, bool) {
	var b strings.Builder

	b.WriteString("You are an expert AI-powered Resume Reviewer. Your task is to analyze the provided resume text thoroughly. ")
	b.WriteString("Provide a comprehensive review covering the following aspects in a structured JSON format:\n")
	b.WriteString("- **ATS Friendliness**: Assess how well the resume is optimized for Applicant Tracking Systems. Provide a score (0-100) and specific reasons/suggestions.\n")
	b.WriteString("- **Improvements**: Suggest detailed improvements for content, clarity, conciseness, and impact. List at least 3-5 actionable points.\n")
	b.WriteString("- **Mistakes**: Identify common resume mistakes (e.g., typos, grammatical errors, inconsistent formatting, vague language, missing quantifiable achievements). List at least 3-5 specific mistakes.\n")
	b.WriteString("- **Keyword Suitability**: If a job description is provided, analyze the resume for suitable keywords relevant to that job description. If no job description is provided, suggest general industry-relevant keywords based on the resume's content. Provide a list of suggested keywords and explain why they are suitable.\n")
	b.WriteString("- **LinkedIn Optimization**: Based on the resume content, provide concrete suggestions for optimizing a LinkedIn profile. List at least 3-5 actionable tips (e.g., headline, summary, experience section, skills, recommendations).\n\n")
	b.WriteString("**Resume Text:**\n")
	b.WriteString(resumeText)
	b.WriteString("\n\n")

	if strings.TrimSpace(jobDescription) != "" {
		b.WriteString("**Job Description (for keyword suitability):**\n")
		b.WriteString(jobDescription)
		b.WriteString("\n\n")
	}

	b.WriteString("Please provide the output in a single JSON object with the following keys: ")
	b.WriteString("`ats_friendliness` (object with `score` and `suggestions`), `improvements` (array of strings), ")
	b.WriteString("`mistakes` (array of strings), `keyword_suitability` (object with `suggested_keywords` as array of strings and `explanation`), ")
	b.WriteString("and `linkedin_optimization` (array of strings).")

	prompt := b.String()
	if pb.maxChars > 0 && len(prompt) > pb.maxChars {
		return truncateUTF8(prompt, pb.maxChars), true
	}
	return prompt, false
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ReviewSchema is the response schema handed to Gemini. It mirrors
// models.ReviewResult.
func ReviewSchema() *genai.Schema {
	stringList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ats_friendliness": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"score":       {Type: genai.TypeInteger},
					"suggestions": stringList(),
				},
				Required: []string{"score", "suggestions"},
			},
			"improvements": stringList(),
			"mistakes":     stringList(),
			"keyword_suitability": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"suggested_keywords": stringList(),
					"explanation":        {Type: genai.TypeString},
				},
				Required: []string{"suggested_keywords", "explanation"},
			},
			"linkedin_optimization": stringList(),
		},
		Required: []string{"ats_friendliness", "improvements", "mistakes", "keyword_suitability", "linkedin_optimization"},
	}
}
