// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"strings"

	"go.astrophena.name/linguabot/internal/api/line"
)

// runCommand dispatches a slash command that survived the authorization gate.
//
// Tier-gating failure is silent: a command the sender's role doesn't permit
// is treated exactly like an unrecognized one, so non-admins cannot probe
// for admin-only command names. Unrecognized commands produce no reply and no
// state change, protecting malformed commands from accidental translation.
func (b *Bot) runCommand(ctx context.Context, ev line.Event, text string, role Role, container string) {
	if role < RoleAdmin {
		return
	}

	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/gencode":
		code, err := b.State.MintCode(ctx)
		if err != nil {
			b.logf("bot: minting auth code: %v", err)
			if code == "" {
				return
			}
		}
		b.reply(ctx, ev, "授權碼："+code)

	case "/authcode":
		if container == "" {
			b.reply(ctx, ev, msgNoContainer)
			return
		}
		ok, err := b.State.Authorize(ctx, arg, container)
		if err != nil {
			b.logf("bot: persisting authorization of %q: %v", container, err)
		}
		if !ok {
			b.reply(ctx, ev, msgBadCode)
			return
		}
		b.reply(ctx, ev, msgAuthorized)

	case "/addgroup":
		if container == "" {
			b.reply(ctx, ev, msgNoContainer)
			return
		}
		if err := b.State.Allow(ctx, container); err != nil {
			b.logf("bot: persisting allow of %q: %v", container, err)
		}
		b.reply(ctx, ev, msgGroupAdded)

	case "/removegroup":
		if container == "" {
			b.reply(ctx, ev, msgNoContainer)
			return
		}
		if err := b.State.Remove(ctx, container); err != nil {
			b.logf("bot: persisting removal of %q: %v", container, err)
		}
		b.reply(ctx, ev, msgGroupRemoved)

	case "/groups":
		b.reply(ctx, ev, fmt.Sprintf("授權群組數量：%d", len(b.State.Allowed())))

	case "/addadmin":
		if role != RoleOwner || arg == "" {
			return
		}
		if err := b.State.AddAdmin(ctx, arg); err != nil {
			b.logf("bot: persisting admin %q: %v", arg, err)
		}
		b.reply(ctx, ev, msgAdminAdded)

	case "/approve":
		if role != RoleOwner {
			return
		}
		if container == "" {
			b.reply(ctx, ev, msgNoContainer)
			return
		}
		ok, err := b.State.Approve(ctx, container)
		if err != nil {
			b.logf("bot: persisting approval of %q: %v", container, err)
		}
		if !ok {
			b.reply(ctx, ev, msgNotPending)
			return
		}
		b.reply(ctx, ev, msgApproved)

	case "/reject":
		if role != RoleOwner {
			return
		}
		if container == "" {
			b.reply(ctx, ev, msgNoContainer)
			return
		}
		ok, err := b.State.Reject(ctx, container)
		if err != nil {
			b.logf("bot: persisting rejection of %q: %v", container, err)
		}
		if !ok {
			b.reply(ctx, ev, msgNotPending)
			return
		}
		b.reply(ctx, ev, msgRejected)
		b.leave(ctx, ev.Source)

	case "/pending":
		if role != RoleOwner {
			return
		}
		pending := b.State.Pending()
		if len(pending) == 0 {
			b.reply(ctx, ev, msgNoPending)
			return
		}
		b.reply(ctx, ev, "待審核群組：\n"+strings.Join(pending, "\n"))
	}
}
