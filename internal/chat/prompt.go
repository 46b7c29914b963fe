package chat

import (
	"fitness-chatter/internal/history"
	"fitness-chatter/internal/llm"
)

const SystemInstruction = "You are a helpful fitness assistant."

// BuildPrompt lays out the system instruction, the prior turns in order and
// the new question as the final user message. Turns are passed through as is.
func BuildPrompt(turns []history.Turn, question string) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemInstruction})
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Message})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: question})
}
