package assessor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hxl333/mbti-bot/prompt/mbti"
)

// Keywords holds the string-heuristic tables: one keyword set per axis for
// the dimension-coverage check, plus the trigger phrases the assistant is
// instructed to emit when it judges the conversation ready. They are data,
// not logic, so deployments can swap them for another language.
type Keywords struct {
	Axes           map[mbti.Axis][]string `yaml:"axes"`
	TriggerPhrases []string               `yaml:"trigger_phrases"`
}

// DefaultKeywords returns the built-in tables, tuned for Chinese
// conversations. Coverage matching is recall-oriented: incidental hits are
// an accepted imprecision of the heuristic.
func DefaultKeywords() Keywords {
	return Keywords{
		Axes: map[mbti.Axis][]string{
			mbti.AxisEI: {"独处", "聚会", "社交", "安静", "热闹", "朋友", "充电"},
			mbti.AxisSN: {"细节", "具体", "实际", "想象", "直觉", "可能性", "大局"},
			mbti.AxisTF: {"逻辑", "理性", "客观", "感受", "情感", "和谐", "价值观"},
			mbti.AxisJP: {"计划", "安排", "条理", "随性", "灵活", "临时", "截止"},
		},
		TriggerPhrases: []string{"分析", "评估结果", "测试结果"},
	}
}

// ResolveKeywords assembles the heuristic tables with explicit precedence:
// a keywords file overrides the built-in defaults, and phrases set
// explicitly by the operator override the file. phrasesSet must be true
// only when the phrases were actually provided, not defaulted — otherwise
// the default trigger phrases would silently clobber the file's.
func ResolveKeywords(path string, phrases []string, phrasesSet bool) (Keywords, error) {
	kw := DefaultKeywords()
	var loadErr error
	if path != "" {
		kw, loadErr = LoadKeywordsFile(path)
	}
	if phrasesSet && len(phrases) > 0 {
		kw.TriggerPhrases = phrases
	}
	return kw, loadErr
}

// LoadKeywordsFile reads a YAML override for the heuristic tables. Missing
// sections keep their defaults.
func LoadKeywordsFile(path string) (Keywords, error) {
	kw := DefaultKeywords()
	data, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read keywords file: %w", err)
	}
	var override Keywords
	if err := yaml.Unmarshal(data, &override); err != nil {
		return kw, fmt.Errorf("parse keywords file: %w", err)
	}
	if len(override.Axes) > 0 {
		kw.Axes = override.Axes
	}
	if len(override.TriggerPhrases) > 0 {
		kw.TriggerPhrases = override.TriggerPhrases
	}
	return kw, nil
}
