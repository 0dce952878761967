package protocol

// Role identifies the sender of a conversation history message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single record in a conversation's history log. The JSON
// shape ({"role": ..., "content": ...}) matches what the external
// conversation store serializes, so appended records interleave cleanly
// with the records the host writes itself.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
