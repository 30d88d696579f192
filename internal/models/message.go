// ABOUTME: Message and conversation types for chat exchanges
// ABOUTME: Conversations are caller-owned read-only slices of messages
package models

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LastN returns the trailing n messages of a conversation.
// The returned slice shares backing storage with the input; callers treat it as read-only.
func LastN(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
