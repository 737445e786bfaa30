// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package line_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"go.astrophena.name/linguabot/internal/api/line"
	"go.astrophena.name/linguabot/internal/testutil"
	"go.astrophena.name/linguabot/internal/web"
)

const secret = "test-channel-secret"

func sign(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	t.Parallel()

	c := &line.Client{Secret: secret}
	body := []byte(`{"destination":"U1234","events":[]}`)

	cases := map[string]struct {
		signature string
		body      []byte
		want      bool
	}{
		"valid": {
			signature: sign(t, secret, body),
			body:      body,
			want:      true,
		},
		"wrong secret": {
			signature: sign(t, "other-secret", body),
			body:      body,
			want:      false,
		},
		"tampered body": {
			signature: sign(t, secret, body),
			body:      []byte(`{"destination":"U5678","events":[]}`),
			want:      false,
		},
		"not base64": {
			signature: "!!!",
			body:      body,
			want:      false,
		},
		"empty": {
			signature: "",
			body:      body,
			want:      false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertEqual(t, c.ValidateSignature(tc.signature, tc.body), tc.want)
		})
	}
}

func TestReply(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST api.line.me/v2/bot/message/reply", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		web.RespondJSON(w, struct{}{})
	})

	c := &line.Client{
		Token:      "test-token",
		HTTPClient: testutil.MockHTTPClient(mux),
	}
	if err := c.Reply(t.Context(), "token123", "hello"); err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, gotAuth, "Bearer test-token")
	testutil.AssertEqual(t, gotBody, map[string]any{
		"replyToken": "token123",
		"messages": []any{
			map[string]any{"type": "text", "text": "hello"},
		},
	})
}

func TestReplyError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST api.line.me/v2/bot/message/reply", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSONError(w, r, web.ErrBadRequest)
	})

	c := &line.Client{
		Token:      "test-token",
		HTTPClient: testutil.MockHTTPClient(mux),
	}
	if err := c.Reply(t.Context(), "expired", "hello"); err == nil {
		t.Fatal("Reply must fail on a non-200 response")
	}
}

func TestLeave(t *testing.T) {
	t.Parallel()

	var gotPath string

	mux := http.NewServeMux()
	mux.HandleFunc("POST api.line.me/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		web.RespondJSON(w, struct{}{})
	})

	c := &line.Client{
		Token:      "test-token",
		HTTPClient: testutil.MockHTTPClient(mux),
	}

	if err := c.LeaveGroup(t.Context(), "C123"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, gotPath, "/v2/bot/group/C123/leave")

	if err := c.LeaveRoom(t.Context(), "R456"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, gotPath, "/v2/bot/room/R456/leave")
}

func TestContainerID(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		src  line.Source
		want string
	}{
		"group": {line.Source{Type: "group", GroupID: "C123", UserID: "U1"}, "C123"},
		"room":  {line.Source{Type: "room", RoomID: "R456", UserID: "U1"}, "R456"},
		"user":  {line.Source{Type: "user", UserID: "U1"}, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertEqual(t, tc.src.ContainerID(), tc.want)
		})
	}
}
