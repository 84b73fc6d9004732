package assessor

import (
	"strings"

	"github.com/hxl333/mbti-bot/prompt/mbti"
	"github.com/hxl333/mbti-bot/session"
)

// CoveredAxes counts how many of the four axes have at least one keyword
// occurring anywhere in the concatenated, case-folded transcript. This is a
// coarse substring heuristic, not semantic analysis.
func (k Keywords) CoveredAxes(turns []session.Turn) int {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	text := strings.ToLower(b.String())

	covered := 0
	for _, axis := range mbti.AxisOrder {
		for _, kw := range k.Axes[axis] {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				covered++
				break
			}
		}
	}
	return covered
}

// hasTriggerPhrase reports whether the assistant reply contains one of the
// configured trigger phrases. Case-sensitive: the phrases are emitted by
// the model exactly as instructed in the system prompt.
func (k Keywords) hasTriggerPhrase(reply string) bool {
	for _, phrase := range k.TriggerPhrases {
		if phrase != "" && strings.Contains(reply, phrase) {
			return true
		}
	}
	return false
}

// ShouldAnalyze is the analysis trigger: true iff enough questions were
// answered AND either the reply carries a trigger phrase or at least three
// of the four axes are covered by the transcript.
func ShouldAnalyze(reply string, questionsAsked, minQuestions int, turns []session.Turn, kw Keywords) bool {
	if questionsAsked < minQuestions {
		return false
	}
	return kw.hasTriggerPhrase(reply) || kw.CoveredAxes(turns) >= 3
}
