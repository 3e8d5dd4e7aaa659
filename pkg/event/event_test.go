package event

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return raw
}

func TestNormalizeVerificationHandshake(t *testing.T) {
	out := Normalize(decode(t, `{"type": "url_verification", "challenge": "abc123"}`))
	if out.Kind != KindVerification {
		t.Fatalf("kind = %v, want verification", out.Kind)
	}
	if out.Challenge != "abc123" {
		t.Fatalf("challenge = %q, want %q", out.Challenge, "abc123")
	}
}

func TestNormalizeActionableShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantUser string
		wantText string
	}{
		{
			name:     "wrapped event",
			body:     `{"event": {"text": "helo wrold", "user": "U1"}}`,
			wantUser: "U1",
			wantText: "helo wrold",
		},
		{
			name:     "flat event",
			body:     `{"text": "hi", "user": "U2"}`,
			wantUser: "U2",
			wantText: "hi",
		},
		{
			name:     "nested message text",
			body:     `{"event": {"message": {"text": "nested", "user": "U3"}}}`,
			wantUser: "U3",
			wantText: "nested",
		},
		{
			name:     "user_id field",
			body:     `{"event": {"text": "hi", "user_id": "U4"}}`,
			wantUser: "U4",
			wantText: "hi",
		},
		{
			name:     "sender field",
			body:     `{"event": {"text": "hi", "sender": "U5"}}`,
			wantUser: "U5",
			wantText: "hi",
		},
		{
			name:     "top-level text with wrapped user",
			body:     `{"text": "outer", "event": {"user": "U6"}}`,
			wantUser: "U6",
			wantText: "outer",
		},
		{
			name:     "event text wins over nested message",
			body:     `{"event": {"text": "primary", "message": {"text": "secondary"}, "user": "U7"}}`,
			wantUser: "U7",
			wantText: "primary",
		},
		{
			name:     "user wins over user_id",
			body:     `{"event": {"text": "hi", "user": "U8", "user_id": "U9"}}`,
			wantUser: "U8",
			wantText: "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(decode(t, tt.body))
			if out.Kind != KindActionable {
				t.Fatalf("kind = %v, want actionable (reason %q)", out.Kind, out.Reason)
			}
			if out.Request.UserID != tt.wantUser {
				t.Fatalf("user = %q, want %q", out.Request.UserID, tt.wantUser)
			}
			if out.Request.Text != tt.wantText {
				t.Fatalf("text = %q, want %q", out.Request.Text, tt.wantText)
			}
		})
	}
}

func TestNormalizeBotMarkersAlwaysIgnored(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bot_id set", body: `{"event": {"bot_id": "B1", "text": "hi", "user": "U1"}}`},
		{name: "bot_message subtype", body: `{"event": {"subtype": "bot_message", "text": "hi", "user": "U1"}}`},
		{name: "flat bot_id", body: `{"bot_id": "B2", "text": "hi", "user": "U1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(decode(t, tt.body))
			if out.Kind != KindNotActionable {
				t.Fatalf("kind = %v, want not actionable", out.Kind)
			}
			if out.Reason != ReasonIgnored {
				t.Fatalf("reason = %q, want %q", out.Reason, ReasonIgnored)
			}
		})
	}
}

func TestNormalizeEmptyBotIDIsNotABotMarker(t *testing.T) {
	out := Normalize(decode(t, `{"event": {"bot_id": "", "text": "hi", "user": "U1"}}`))
	if out.Kind != KindActionable {
		t.Fatalf("kind = %v, want actionable", out.Kind)
	}
}

func TestNormalizeMissingTextOrUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no text", body: `{"event": {"user": "U1"}}`},
		{name: "no user", body: `{"event": {"text": "hi"}}`},
		{name: "empty text", body: `{"event": {"text": "", "user": "U1"}}`},
		{name: "unrecognized payload", body: `{"something": "else"}`},
		{name: "non-string text", body: `{"event": {"text": 42, "user": "U1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(decode(t, tt.body))
			if out.Kind != KindNotActionable {
				t.Fatalf("kind = %v, want not actionable", out.Kind)
			}
			if out.Reason != ReasonNoTextUser {
				t.Fatalf("reason = %q, want %q", out.Reason, ReasonNoTextUser)
			}
		})
	}
}

func TestNormalizeNilBody(t *testing.T) {
	out := Normalize(nil)
	if out.Kind != KindNotActionable || out.Reason != ReasonIgnored {
		t.Fatalf("outcome = %+v, want ignored", out)
	}
}
