package bus

// InboundMessage is the canonical actionable request extracted from one
// channel delivery: a user and the text they want rewritten.
type InboundMessage struct {
	Channel  string            `json:"channel"`
	UserID   string            `json:"user_id"`
	ChatID   string            `json:"chat_id,omitempty"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage carries the text to deliver back to the user.
//
// A non-empty Error marks a generation failure; Text then holds the fixed
// fallback message rather than generated output.
type OutboundMessage struct {
	Channel string `json:"channel"`
	UserID  string `json:"user_id"`
	ChatID  string `json:"chat_id,omitempty"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}
