// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package translate routes text between Thai and Traditional Chinese through
// an LLM-backed translation engine.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.astrophena.name/linguabot/internal/api/openai"

	"github.com/google/generative-ai-go/genai"
)

// Lang is a detected source language.
type Lang string

// Languages recognized by [Detect].
const (
	Thai    Lang = "th"
	Chinese Lang = "zh"
	English Lang = "en"
)

// Detect classifies the source language of text.
//
// Text containing any Thai-script character is Thai; otherwise text
// containing any Han-script character is Chinese; everything else is English.
// The order of the two script checks is the tie-break contract.
func Detect(text string) Lang {
	for _, r := range text {
		if unicode.Is(unicode.Thai, r) {
			return Thai
		}
	}
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return Chinese
		}
	}
	return English
}

// Target names of the translation, as passed to the engine.
const (
	TargetChinese = "繁體中文"
	TargetThai    = "泰文"
)

// TargetFor returns the target language name for a detected source language:
// Thai translates to Traditional Chinese, Chinese to Thai, and anything else
// to Traditional Chinese.
func TargetFor(source Lang) string {
	if source == Chinese {
		return TargetThai
	}
	return TargetChinese
}

// ErrTranslation is returned by [Translator.Translate] when the upstream
// engine fails. The underlying cause is wrapped and can be unwrapped with
// [errors.Unwrap], but must never be surfaced verbatim to chat users.
var ErrTranslation = errors.New("translation failed")

// Translator translates text into a target language.
type Translator interface {
	// Translate returns text translated into the target language. Any upstream
	// failure is reported as an error wrapping [ErrTranslation].
	Translate(ctx context.Context, text, target string) (string, error)
}

// The engine is instructed to return only the translation, with no
// commentary, so the reply can be sent to chat as-is.
const systemPrompt = "你是專業翻譯引擎\n只輸出翻譯\n禁止解釋\n禁止補充"

func prompt(text, target string) string {
	return fmt.Sprintf("翻譯成%s：%s", target, text)
}

// OpenAI is a [Translator] backed by the OpenAI chat completions API.
type OpenAI struct {
	// Client is the OpenAI API client to use.
	Client *openai.Client
	// Model is the model used for translation.
	Model string
}

// Translate implements the [Translator] interface.
func (t *OpenAI) Translate(ctx context.Context, text, target string) (string, error) {
	out, err := t.Client.ChatCompletion(ctx, openai.ChatCompletionParams{
		Model:       t.Model,
		Temperature: 0,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(text, target)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslation, err)
	}
	return out, nil
}

// Gemini is a [Translator] backed by the Gemini API.
type Gemini struct {
	// Model is the generative model used for translation. The caller is
	// expected to have set its system instruction with [NewGeminiModel] or
	// equivalent.
	Model *genai.GenerativeModel
}

// NewGeminiModel returns a generative model of client configured for
// translation.
func NewGeminiModel(client *genai.Client, name string) *genai.GenerativeModel {
	m := client.GenerativeModel(name)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return m
}

// Translate implements the [Translator] interface.
func (t *Gemini) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := t.Model.GenerateContent(ctx, genai.Text(prompt(text, target)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslation, err)
	}
	out, err := textFrom(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslation, err)
	}
	return out, nil
}

var errEmptyResponse = errors.New("empty model response")

func textFrom(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return strings.TrimSpace(sb.String()), nil
}
