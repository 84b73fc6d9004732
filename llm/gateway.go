// Package llm adapts the external chat-completion provider behind a small
// gateway interface.
package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/hxl333/mbti-bot/session"
)

// Gateway sends a system prompt plus the conversation history to the chat
// model and returns the assistant's reply text. Failures are wrapped in
// *GatewayError; retry and timeout behavior belong to the provider layer,
// not here.
type Gateway interface {
	Invoke(ctx context.Context, systemPrompt string, turns []session.Turn) (string, error)
}

// GatewayError wraps any transport, auth or provider failure during a chat
// call.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "llm gateway: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// toMessages maps the system prompt and session turns onto the eino message
// schema, preserving chronological order.
func toMessages(systemPrompt string, turns []session.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns)+1)
	msgs = append(msgs, schema.SystemMessage(systemPrompt))
	for _, t := range turns {
		switch t.Role {
		case session.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(t.Text, nil))
		default:
			msgs = append(msgs, schema.UserMessage(t.Text))
		}
	}
	return msgs
}
