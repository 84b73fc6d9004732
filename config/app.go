package config

import "errors"

// ErrMissingAPIKey is returned by Validate when no Gemini credential is set.
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")

// App holds the runtime configuration for the assessment service.
// Loaded with New[App]("MBTI"); every field can be overridden via
// MBTI_-prefixed environment variables.
type App struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"MODEL" default:"gemini-2.5-flash"`
	Temperature float32 `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" default:"1024"`

	// MinQuestionsBeforeAnalysis gates the analysis trigger: no final
	// assessment is attempted before this many questions were answered.
	MinQuestionsBeforeAnalysis int `envconfig:"MIN_QUESTIONS" default:"4"`

	// AnalysisKeywords are the trigger phrases the assistant is instructed
	// to emit once it judges the conversation ready for analysis.
	AnalysisKeywords []string `envconfig:"ANALYSIS_KEYWORDS" default:"分析,评估结果,测试结果"`

	// KeywordsFile optionally points at a YAML file overriding the built-in
	// axis keyword sets and trigger phrases.
	KeywordsFile string `envconfig:"KEYWORDS_FILE"`

	Addr string `envconfig:"ADDR" default:":8080"`
}

// Validate reports whether the configuration is usable for talking to the
// model provider. A failed validation does not abort startup; the service
// runs with the model marked not ready.
func (a *App) Validate() error {
	if a.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
