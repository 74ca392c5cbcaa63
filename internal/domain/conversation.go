package domain

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message of a caller-held conversation history.
// The core reads history to build prompts; it never stores or mutates it.
// Assistant turns may carry the retrieved chunks used as citations.
type ConversationTurn struct {
	Role    string
	Content string
	Sources []RetrievedChunk
}
