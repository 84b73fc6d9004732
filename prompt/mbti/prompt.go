package mbti

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/hxl333/mbti-bot/session"
)

// RenderSystem renders the conversation system prompt via the Eino prompt
// component. The progress hint tells the model whether enough questions were
// answered to start steering toward the analysis phase.
func RenderSystem(ctx context.Context, questionsAsked, minQuestions int) (string, error) {
	hint := fmt.Sprintf("目前已经问了 %d 个问题，还需要继续提问收集更多信息。", questionsAsked)
	if questionsAsked >= minQuestions {
		hint = "你已经收集到足够的基本信息，可以在合适的时机提示进入分析阶段。"
	}

	// Safely render known tokens only to avoid interfering with braces in
	// the template text.
	content := strings.NewReplacer(
		"{progress_hint}", hint,
	).Replace(SystemPromptTemplate)

	return renderThroughPromptComponent(ctx, content)
}

// RenderAnalysis renders the final-analysis prompt with the full turn
// history embedded verbatim.
func RenderAnalysis(ctx context.Context, turns []session.Turn) (string, error) {
	var transcript strings.Builder
	for _, t := range turns {
		speaker := "用户"
		if t.Role == session.RoleAssistant {
			speaker = "顾问"
		}
		transcript.WriteString(speaker)
		transcript.WriteString(": ")
		transcript.WriteString(t.Text)
		transcript.WriteString("\n")
	}

	content := strings.NewReplacer(
		"{transcript}", transcript.String(),
	).Replace(AnalysisPromptTemplate)

	return renderThroughPromptComponent(ctx, content)
}

// renderThroughPromptComponent wraps the content in the Eino prompt
// component using a messages placeholder, so prompt callbacks fire without
// FString touching the JSON braces in the templates.
func renderThroughPromptComponent(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("mbti prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("mbti prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
