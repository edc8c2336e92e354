package summarize

// Analysis is the structured result derived from a flattened meeting
// transcript. It is treated as an opaque payload by the transcript core.
type Analysis struct {
	// Summary is a concise summary of the meeting.
	Summary string `json:"summary"`
	// ActionItems lists the specific action items identified.
	ActionItems []string `json:"actionItems"`
	// KeyPoints lists the key points discussed.
	KeyPoints []string `json:"keyPoints"`
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionRequest is the input to a chat-completion backend.
type CompletionRequest struct {
	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64 `json:"temperature,omitempty"`
	// MaxTokens limits the response length. 0 means backend default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// CompletionResponse is the output of a chat-completion backend.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
}
