package mbti

import _ "embed"

// SystemPromptTemplate holds the conversation system prompt template.
//
//go:embed system_prompt.txt
var SystemPromptTemplate string

// AnalysisPromptTemplate holds the final-analysis prompt template.
//
//go:embed analysis_prompt.txt
var AnalysisPromptTemplate string

// MBTIProfilesJSON contains the MBTI profiles in JSON form.
//
//go:embed mbti.json
var MBTIProfilesJSON string
