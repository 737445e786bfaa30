// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package line provides a very minimal client for interacting with the LINE
// Messaging API.
package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"go.astrophena.name/linguabot/internal/request"
)

const apiURL = "https://api.line.me/v2/bot"

// Client holds configuration for interacting with the LINE Messaging API.
type Client struct {
	// Token is the channel access token used for authentication.
	Token string
	// Secret is the channel secret used for webhook signature verification.
	Secret string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

// EventType identifies the kind of a webhook event.
type EventType string

// Webhook event types handled by this client. The Messaging API defines
// more; everything else is ignored.
const (
	EventJoin    EventType = "join"
	EventMessage EventType = "message"
)

// Source identifies where an event came from: a user chat, a group chat or a
// multi-person room.
//
// See https://developers.line.biz/en/reference/messaging-api/#common-properties.
type Source struct {
	Type    string `json:"type"` // "user", "group" or "room"
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// ContainerID returns the group or room identifier of the source, or an
// empty string for a one-to-one chat.
func (s Source) ContainerID() string {
	if s.GroupID != "" {
		return s.GroupID
	}
	return s.RoomID
}

// Message is the message object of a message event.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"` // only "text" is handled
	Text string `json:"text,omitempty"`
}

// Event is a single webhook event.
type Event struct {
	Type       EventType `json:"type"`
	ReplyToken string    `json:"replyToken,omitempty"`
	Source     Source    `json:"source"`
	Message    *Message  `json:"message,omitempty"`
}

// WebhookRequest is the body of a webhook delivery: an ordered batch of
// events.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// ValidateSignature reports whether signature (the value of the
// X-Line-Signature header) is a valid HMAC-SHA256 signature of body under the
// channel secret.
//
// See https://developers.line.biz/en/reference/messaging-api/#signature-validation.
func (c *Client) ValidateSignature(signature string, body []byte) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.Secret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}

// TextMessage is an outgoing text message.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []TextMessage `json:"messages"`
}

// Reply sends a text message in reply to an event. A reply token is usable
// exactly once.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	_, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    apiURL + "/message/reply",
		Body: replyRequest{
			ReplyToken: replyToken,
			Messages:   []TextMessage{{Type: "text", Text: text}},
		},
		Headers:    c.authHeaders(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	return err
}

// LeaveGroup makes the bot leave a group chat.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	return c.leave(ctx, "/group/"+groupID+"/leave")
}

// LeaveRoom makes the bot leave a multi-person room.
func (c *Client) LeaveRoom(ctx context.Context, roomID string) error {
	return c.leave(ctx, "/room/"+roomID+"/leave")
}

func (c *Client) leave(ctx context.Context, path string) error {
	_, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        apiURL + path,
		Headers:    c.authHeaders(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	return err
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.Token,
	}
}
