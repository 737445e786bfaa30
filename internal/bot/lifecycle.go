// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"

	"go.astrophena.name/linguabot/internal/api/line"
)

// handleJoin reacts to the bot being added to a group or room. An authorized
// container needs nothing; an unauthorized one gets the gate notice and then,
// depending on the join mode, the bot either leaves or marks the container
// pending and waits for the owner's verdict.
func (b *Bot) handleJoin(ctx context.Context, ev line.Event) {
	container := ev.Source.ContainerID()
	if container == "" {
		return
	}
	if b.State.AuthStateOf(container) == Allowed {
		return
	}

	b.reply(ctx, ev, msgJoinGate)

	switch b.JoinMode {
	case JoinModePending:
		if err := b.State.MarkPending(ctx, container); err != nil {
			b.logf("bot: persisting pending %q: %v", container, err)
		}
	case JoinModeLeave:
		b.leave(ctx, ev.Source)
	}
}

// leave makes the bot leave the container the event came from. The leave call
// is selected by the source kind. Leaving is best-effort: a failure is logged
// and swallowed, it never blocks the reply that was already sent.
func (b *Bot) leave(ctx context.Context, src line.Source) {
	var err error
	switch {
	case src.GroupID != "":
		err = b.LINE.LeaveGroup(ctx, src.GroupID)
	case src.RoomID != "":
		err = b.LINE.LeaveRoom(ctx, src.RoomID)
	default:
		return
	}
	if err != nil {
		b.logf("bot: leaving %q: %v", src.ContainerID(), err)
	}
}
