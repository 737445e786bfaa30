// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.astrophena.name/linguabot/internal/cli"
	"go.astrophena.name/linguabot/internal/cli/clitest"
	"go.astrophena.name/linguabot/internal/store"
	"go.astrophena.name/linguabot/internal/testutil"
	"go.astrophena.name/linguabot/internal/web"
)

const (
	lineToken  = "test-channel-access-token"
	lineSecret = "test-channel-secret"
	openaiKey  = "test-openai-key"
	ownerID    = "U0000000000000000000000000000000f"
)

func TestRun(t *testing.T) {
	t.Parallel()

	clitest.Run(t, func(t *testing.T) *engine {
		e := new(engine)
		e.httpc = testutil.MockHTTPClient(testMux(t).mux)
		e.store = store.NewMemStore()
		e.noServerStart = true
		return e
	}, map[string]clitest.Case[*engine]{
		"prints usage with help flag": {
			Args:    []string{"-h"},
			WantErr: flag.ErrHelp,
		},
		"version": {
			Args:    []string{"-version"},
			WantErr: cli.ErrExitVersion,
		},
		"fails without LINE credentials": {
			Args:    []string{},
			WantErr: errNoLineCredentials,
		},
		"fails without owner": {
			Args: []string{},
			Env: map[string]string{
				"LINE_CHANNEL_ACCESS_TOKEN": lineToken,
				"LINE_CHANNEL_SECRET":       lineSecret,
			},
			WantErr: errNoOwner,
		},
		"loads configuration from environment": {
			Args: []string{},
			Env: map[string]string{
				"LINE_CHANNEL_ACCESS_TOKEN": lineToken,
				"LINE_CHANNEL_SECRET":       lineSecret,
				"OWNER_USER_ID":             ownerID,
				"OPENAI_API_KEY":            openaiKey,
				"JOIN_MODE":                 "pending",
				"PORT":                      "8080",
			},
			CheckFunc: func(t *testing.T, e *engine) {
				testutil.AssertEqual(t, e.lineToken, lineToken)
				testutil.AssertEqual(t, e.owner, ownerID)
				testutil.AssertEqual(t, e.joinModeFlag, "pending")
				testutil.AssertEqual(t, e.addr, ":8080")
			},
		},
		"rejects invalid join mode": {
			Args: []string{"-join-mode", "bogus"},
			Env: map[string]string{
				"LINE_CHANNEL_ACCESS_TOKEN": lineToken,
				"LINE_CHANNEL_SECRET":       lineSecret,
				"OWNER_USER_ID":             ownerID,
				"OPENAI_API_KEY":            openaiKey,
			},
			WantErr: cli.ErrInvalidArgs,
		},
		"rejects invalid translator": {
			Args: []string{"-translator", "bogus"},
			Env: map[string]string{
				"LINE_CHANNEL_ACCESS_TOKEN": lineToken,
				"LINE_CHANNEL_SECRET":       lineSecret,
				"OWNER_USER_ID":             ownerID,
			},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}

func testEngine(t *testing.T, m *mux) *engine {
	t.Helper()
	e := &engine{
		lineToken:  lineToken,
		lineSecret: lineSecret,
		owner:      ownerID,
		openaiKey:  openaiKey,
		translator: "openai",
		httpc:      testutil.MockHTTPClient(m.mux),
		store:      store.NewMemStore(),
	}
	e.joinModeFlag = "leave"
	if err := e.init.Get(func() error {
		return e.doInit(t.Context())
	}); err != nil {
		t.Fatal(err)
	}
	return e
}

type mux struct {
	mux *http.ServeMux

	mu      sync.Mutex
	replies []string
}

func testMux(t *testing.T) *mux {
	t.Helper()
	m := &mux{mux: http.NewServeMux()}
	m.mux.HandleFunc("POST api.line.me/v2/bot/message/reply", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Text string `json:"text"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		m.mu.Lock()
		for _, msg := range req.Messages {
			m.replies = append(m.replies, msg.Text)
		}
		m.mu.Unlock()
		web.RespondJSON(w, struct{}{})
	})
	m.mux.HandleFunc("POST api.line.me/v2/bot/{kind}/{id}/leave", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSON(w, struct{}{})
	})
	m.mux.HandleFunc("POST api.openai.com/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSON(w, map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"role":    "assistant",
						"content": "translated",
					},
				},
			},
		})
	})
	return m
}

func (m *mux) replyTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replies
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(lineSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookBody(t *testing.T, events ...map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"destination": "U1234",
		"events":      events,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func messageEvent(userID, groupID, text string) map[string]any {
	src := map[string]any{"type": "user", "userId": userID}
	if groupID != "" {
		src["type"] = "group"
		src["groupId"] = groupID
	}
	return map[string]any{
		"type":       "message",
		"replyToken": "reply-token",
		"source":     src,
		"message":    map[string]any{"id": "1", "type": "text", "text": text},
	}
}

func TestHandleWebhook(t *testing.T) {
	t.Parallel()

	m := testMux(t)
	e := testEngine(t, m)

	body := webhookBody(t, messageEvent(ownerID, "", "/myid"))

	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	r.Header.Set("X-Line-Signature", sign(body))
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, m.replyTexts(), []string{"USER ID:\n" + ownerID})
}

func TestHandleWebhookBadSignature(t *testing.T) {
	t.Parallel()

	m := testMux(t)
	e := testEngine(t, m)

	body := webhookBody(t, messageEvent(ownerID, "", "/myid"))

	cases := map[string]string{
		"missing": "",
		"garbage": "!!!",
		"forged":  base64.StdEncoding.EncodeToString([]byte("forged signature bytes, 32 long!")),
	}

	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
			if sig != "" {
				r.Header.Set("X-Line-Signature", sig)
			}
			w := httptest.NewRecorder()
			e.mux.ServeHTTP(w, r)

			testutil.AssertEqual(t, w.Code, http.StatusForbidden)
		})
	}

	testutil.AssertEqual(t, m.replyTexts(), []string(nil))
}

func TestHandleWebhookBadBody(t *testing.T) {
	t.Parallel()

	m := testMux(t)
	e := testEngine(t, m)

	body := []byte("{not json")
	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	r.Header.Set("X-Line-Signature", sign(body))
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)

	testutil.AssertEqual(t, w.Code, http.StatusInternalServerError)
}

func TestHandleWebhookTranslates(t *testing.T) {
	t.Parallel()

	m := testMux(t)
	e := testEngine(t, m)

	const group = "C00000000000000000000000000000001"
	if err := e.state.Allow(t.Context(), group); err != nil {
		t.Fatal(err)
	}

	body := webhookBody(t, messageEvent("U-member", group, "สวัสดี"))
	r := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	r.Header.Set("X-Line-Signature", sign(body))
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, m.replyTexts(), []string{"原文：สวัสดี\n翻譯：translated"})
}
