package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// CacheControl marks a content block for provider-side prompt caching.
// Anthropic currently understands a single "ephemeral" type.
type CacheControl struct {
	Type string `json:"type"`
}

// EphemeralCache is the cache-control marker applied to cached blocks.
var EphemeralCache = &CacheControl{Type: "ephemeral"}

// ContentBlock is one segment of a message. Blocks exist so that a cache
// breakpoint can cover part of a message (e.g. the instructions) without
// covering the rest.
type ContentBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// Message represents a single message in a conversation, as an ordered list
// of content blocks.
type Message struct {
	Role   Role
	Blocks []ContentBlock
}

// TextMessage builds a single-block message with no cache marker.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Blocks: []ContentBlock{{Type: "text", Text: text}}}
}

// Text returns the concatenated text of all blocks.
func (m Message) Text() string {
	var out string
	for _, b := range m.Blocks {
		out += b.Text
	}
	return out
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content          string
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
	Model            string
	FinishReason     string
}
