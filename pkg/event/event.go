// Package event extracts a canonical (user, text) pair from the
// heterogeneously-shaped payloads the Slack Events API delivers: direct
// events, wrapped events, and the legacy flat shape. Absent fields are
// expected, never an error.
package event

// Kind classifies one normalized webhook delivery.
type Kind int

const (
	// KindNotActionable means the delivery carries nothing to rewrite;
	// the caller acks it with Reason as the body.
	KindNotActionable Kind = iota
	// KindVerification is the Slack URL-verification handshake; the caller
	// must echo Challenge back verbatim instead of acking.
	KindVerification
	// KindActionable means Request holds a usable user/text pair.
	KindActionable
)

const (
	ReasonIgnored    = "ignored"
	ReasonNoTextUser = "no text/user"
)

// Request is the actionable pair extracted from a delivery. Both fields are
// non-empty by construction.
type Request struct {
	UserID string
	Text   string
}

// Outcome is the result of normalizing one decoded webhook body.
type Outcome struct {
	Kind      Kind
	Challenge string
	Request   Request
	Reason    string
}

// fieldRule names one place a field may live in a delivery. Rules are
// evaluated in order against the unwrapped event, or against the outer
// envelope when envelope is set; the first non-empty match wins.
type fieldRule struct {
	name     string
	path     []string
	envelope bool
}

var textRules = []fieldRule{
	{name: "event text", path: []string{"text"}},
	{name: "nested message text", path: []string{"message", "text"}},
	{name: "top-level text", path: []string{"text"}, envelope: true},
}

var userRules = []fieldRule{
	{name: "event user", path: []string{"user"}},
	{name: "event user_id", path: []string{"user_id"}},
	{name: "event sender", path: []string{"sender"}},
	{name: "nested message user", path: []string{"message", "user"}},
}

// Normalize classifies one decoded webhook body.
func Normalize(raw map[string]any) Outcome {
	if raw == nil {
		return Outcome{Kind: KindNotActionable, Reason: ReasonIgnored}
	}

	if stringAt(raw, "type") == "url_verification" {
		return Outcome{Kind: KindVerification, Challenge: stringAt(raw, "challenge")}
	}

	evt := raw
	if wrapped, ok := raw["event"].(map[string]any); ok {
		evt = wrapped
	}

	if fromBot(evt) {
		return Outcome{Kind: KindNotActionable, Reason: ReasonIgnored}
	}

	text := applyRules(textRules, evt, raw)
	userID := applyRules(userRules, evt, raw)
	if text == "" || userID == "" {
		return Outcome{Kind: KindNotActionable, Reason: ReasonNoTextUser}
	}

	return Outcome{Kind: KindActionable, Request: Request{UserID: userID, Text: text}}
}

// fromBot reports whether the event carries a bot-origin marker. Replying to
// bot messages would loop the relay back onto its own output.
func fromBot(evt map[string]any) bool {
	if value, ok := evt["bot_id"]; ok && truthy(value) {
		return true
	}

	return stringAt(evt, "subtype") == "bot_message"
}

func applyRules(rules []fieldRule, evt map[string]any, envelope map[string]any) string {
	for _, rule := range rules {
		source := evt
		if rule.envelope {
			source = envelope
		}
		if value := stringAtPath(source, rule.path); value != "" {
			return value
		}
	}

	return ""
}

func stringAtPath(m map[string]any, path []string) string {
	current := m
	for i, key := range path {
		if i == len(path)-1 {
			return stringAt(current, key)
		}

		next, ok := current[key].(map[string]any)
		if !ok {
			return ""
		}
		current = next
	}

	return ""
}

func stringAt(m map[string]any, key string) string {
	value, _ := m[key].(string)
	return value
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	default:
		return true
	}
}
