// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"io"
	"net/http"

	"go.astrophena.name/linguabot/internal/api/line"
	"go.astrophena.name/linguabot/internal/web"
)

func (e *engine) handleWebhook(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		web.RespondJSONError(w, r, err)
		return
	}

	// The signature covers the raw body, so it must be verified before the
	// body is parsed.
	if !e.linec.ValidateSignature(r.Header.Get("X-Line-Signature"), b) {
		web.RespondJSONError(w, r, web.ErrForbidden)
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(b, &req); err != nil {
		web.RespondJSONError(w, r, err)
		return
	}

	e.bot.HandleEvents(r.Context(), req.Events)

	jsonOK(w)
}

func jsonOK(w http.ResponseWriter) {
	var res struct {
		Status string `json:"status"`
	}
	res.Status = "success"
	web.RespondJSON(w, res)
}
