// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package openai provides a very minimal client for interacting with the
// OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.astrophena.name/linguabot/internal/request"
)

const apiURL = "https://api.openai.com/v1"

// Client holds configuration for interacting with the OpenAI API.
type Client struct {
	// APIKey is the API key used for authentication.
	APIKey string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

// Message is a single message of a chat completion conversation.
type Message struct {
	// Role is the author of the message. Must be "system", "user" or
	// "assistant".
	Role string `json:"role"`
	// Content is the text of the message.
	Content string `json:"content"`
}

// ChatCompletionParams defines the structure of the request body sent to the
// chat completions API.
type ChatCompletionParams struct {
	// Model is the name of the model used to generate the completion.
	Model string `json:"model"`
	// Temperature controls the randomness of the completion.
	Temperature float64 `json:"temperature"`
	// Messages is the conversation so far.
	Messages []Message `json:"messages"`
}

// ChatCompletionResponse defines the structure of the response received from
// the chat completions API.
type ChatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

var errNoChoices = errors.New("openai: response contains no choices")

// ChatCompletion sends a request to the chat completions API and returns the
// content of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, params ChatCompletionParams) (string, error) {
	resp, err := request.Make[ChatCompletionResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    apiURL + "/chat/completions",
		Body:   params,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.APIKey,
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
