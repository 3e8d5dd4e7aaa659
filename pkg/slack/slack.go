// Package slack wraps the two Slack Web API calls the relay needs:
// conversations.open to resolve a direct-message channel and
// chat.postMessage to post into it.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tonefix/pkg/config"
)

const defaultBaseURL = "https://slack.com/api"

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *slog.Logger
}

type openConversationRequest struct {
	Users string `json:"users"`
}

type openConversationResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewClient builds the Web API client. The bot token is not validated:
// without one, calls fail with an auth error that delivery absorbs.
func NewClient(cfg config.SlackConfig, log *slog.Logger) *Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		token:      cfg.BotToken,
		log:        log.With("component", "slack.client"),
	}
}

// OpenDM resolves the direct-message channel for a user. Channels are never
// cached; every request re-resolves.
func (c *Client) OpenDM(ctx context.Context, userID string) (string, error) {
	var response openConversationResponse
	if err := c.post(ctx, "conversations.open", openConversationRequest{Users: userID}, &response); err != nil {
		return "", err
	}

	if !response.OK {
		return "", fmt.Errorf("conversations.open returned ok=false: %s", response.Error)
	}
	if response.Channel.ID == "" {
		return "", errors.New("conversations.open returned no channel id")
	}

	return response.Channel.ID, nil
}

// PostMessage posts text into a channel.
func (c *Client) PostMessage(ctx context.Context, channelID string, text string) error {
	var response postMessageResponse
	if err := c.post(ctx, "chat.postMessage", postMessageRequest{Channel: channelID, Text: text}, &response); err != nil {
		return err
	}

	if !response.OK {
		return fmt.Errorf("chat.postMessage returned ok=false: %s", response.Error)
	}

	return nil
}

// SendDM delivers text to a user over a freshly resolved DM channel.
// Best-effort: when channel resolution fails the post is never attempted.
// The returned error exists for logging only; callers are expected to
// discard it, since the inbound webhook is acknowledged independently of
// delivery and there is no channel back to the platform to report failure.
func (c *Client) SendDM(ctx context.Context, userID string, text string) error {
	channelID, err := c.OpenDM(ctx, userID)
	if err != nil {
		c.log.Error("Failed to open DM channel", "user_id", userID, "error", err)
		return err
	}

	if err := c.PostMessage(ctx, channelID, text); err != nil {
		c.log.Error("Failed to post DM", "user_id", userID, "channel_id", channelID, "error", err)
		return err
	}

	return nil
}

func (c *Client) post(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", method, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	return nil
}
