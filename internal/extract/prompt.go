package extract

import "strings"

const systemPrompt = "You extract names, social links (URLs), and professional claims from resumes. Return valid JSON only."

const extractionPrompt = `You are an expert resume analyst. Extract the most important verifiable professional claims from this resume.

Focus on claims that can be verified through web searches:
- Employment history (company names, roles, dates)
- Education (degrees, institutions)
- Certifications and awards
- Notable projects or publications
- Specific technical skills tied to verifiable projects or roles

Rules:
1. Extract 5-8 of the MOST IMPORTANT and VERIFIABLE claims only
2. Skip generic skills like "team player" or "hard worker"
3. Prioritize claims that are likely to have web evidence (e.g., LinkedIn, company pages, publications)
4. Each claim should be a concise, searchable statement
5. Assign importance 1-5 (5 = most important, like current role at a named company)

Return ONLY a valid JSON object with no markdown formatting:
{
  "first_name": "First Name",
  "last_name": "Last Name",
  "social_links": ["https://linkedin.com/in/...", "https://github.com/..."],
  "claims": [
    {"claim": "Worked as Senior Software Engineer at Google from 2020-2023", "category": "employment", "importance": 5},
    {"claim": "Bachelor's degree in Computer Science from MIT", "category": "education", "importance": 4}
  ]
}

Valid categories: employment, education, skill, certification, achievement, project

Resume text:
---
{resume_text}
---`

// BuildPrompt renders the extraction prompt around the (already truncated) resume text
func BuildPrompt(text string) string {
	return strings.Replace(extractionPrompt, "{resume_text}", text, 1)
}
