// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package translate_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go.astrophena.name/linguabot/internal/api/openai"
	"go.astrophena.name/linguabot/internal/testutil"
	"go.astrophena.name/linguabot/internal/translate"
	"go.astrophena.name/linguabot/internal/web"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		text string
		want translate.Lang
	}{
		"thai":                    {"สวัสดีครับ", translate.Thai},
		"traditional chinese":     {"你好嗎", translate.Chinese},
		"simplified chinese":      {"谢谢", translate.Chinese},
		"english":                 {"hello there", translate.English},
		"empty":                   {"", translate.English},
		"digits and punctuation":  {"123!?", translate.English},
		"thai wins over han":      {"สวัสดี你好", translate.Thai},
		"han wins over latin":     {"hello 你好", translate.Chinese},
		"thai embedded in latin":  {"say สวัสดี please", translate.Thai},
		"japanese kana only":      {"こんにちは", translate.English},
		"kanji counts as chinese": {"日本語", translate.Chinese},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertEqual(t, translate.Detect(tc.text), tc.want)
		})
	}
}

func TestTargetFor(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, translate.TargetFor(translate.Thai), translate.TargetChinese)
	testutil.AssertEqual(t, translate.TargetFor(translate.Chinese), translate.TargetThai)
	testutil.AssertEqual(t, translate.TargetFor(translate.English), translate.TargetChinese)
}

func TestOpenAITranslate(t *testing.T) {
	t.Parallel()

	var got openai.ChatCompletionParams

	mux := http.NewServeMux()
	mux.HandleFunc("POST api.openai.com/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		web.RespondJSON(w, map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"role":    "assistant",
						"content": "你好",
					},
				},
			},
		})
	})

	tr := &translate.OpenAI{
		Client: &openai.Client{
			APIKey:     "test-key",
			HTTPClient: testutil.MockHTTPClient(mux),
		},
		Model: "gpt-4o-mini",
	}

	out, err := tr.Translate(t.Context(), "สวัสดี", translate.TargetChinese)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, out, "你好")

	testutil.AssertEqual(t, got.Model, "gpt-4o-mini")
	testutil.AssertEqual(t, got.Temperature, float64(0))
	if len(got.Messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(got.Messages))
	}
	testutil.AssertEqual(t, got.Messages[0].Role, "system")
	testutil.AssertEqual(t, got.Messages[1], openai.Message{
		Role:    "user",
		Content: "翻譯成繁體中文：สวัสดี",
	})
}

func TestOpenAITranslateFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST api.openai.com/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSONError(w, r, web.ErrBadRequest)
	})

	tr := &translate.OpenAI{
		Client: &openai.Client{
			APIKey:     "test-key",
			HTTPClient: testutil.MockHTTPClient(mux),
		},
		Model: "gpt-4o-mini",
	}

	_, err := tr.Translate(t.Context(), "สวัสดี", translate.TargetChinese)
	if !errors.Is(err, translate.ErrTranslation) {
		t.Fatalf("want error wrapping ErrTranslation, got %v", err)
	}
}
