// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package bot implements the authorization and command-dispatch state machine
// of a LINE translation bot.
//
// For every inbound webhook event the bot decides whether the sending user
// may invoke a command, whether the originating group or room may receive
// translation service, and what side effect results: a reply, a leave or a
// persistent state change.
package bot

import (
	"context"
	"log"
	"strings"

	"go.astrophena.name/linguabot/internal/api/line"
	"go.astrophena.name/linguabot/internal/logger"
	"go.astrophena.name/linguabot/internal/translate"
	"go.astrophena.name/linguabot/internal/util/syncx"
)

// JoinMode selects what happens when the bot is added to an unauthorized
// container.
type JoinMode int

const (
	// JoinModeLeave makes the bot send the gate notice and leave immediately.
	JoinModeLeave JoinMode = iota
	// JoinModePending makes the bot send the gate notice, mark the container
	// pending and stay, awaiting /approve or /reject from the owner.
	JoinModePending
)

// Bot is the event orchestrator. All fields must be set before use and are
// read-only afterwards.
type Bot struct {
	// Owner is the user identifier of the bot owner.
	Owner string
	// JoinMode selects the reaction to joining an unauthorized container.
	JoinMode JoinMode
	// State is the durable authorization state.
	State *State
	// LINE is the client used for replies and leave calls.
	LINE *line.Client
	// Translator translates non-command text.
	Translator translate.Translator
	// Logf is used for logging. If nil, log.Printf is used.
	Logf logger.Logf
}

func (b *Bot) logf(format string, args ...any) {
	if b.Logf == nil {
		log.Printf(format, args...)
		return
	}
	b.Logf(format, args...)
}

// Webhook deliveries batch multiple events; they are independent in the vast
// majority of real traffic, so they are dispatched in parallel with no
// ordering guarantee.
const maxConcurrentEvents = 10

// HandleEvents processes a batch of webhook events and blocks until all of
// them are handled. A failure in one event never prevents processing of its
// siblings.
func (b *Bot) HandleEvents(ctx context.Context, events []line.Event) {
	lwg := syncx.NewLimitedWaitGroup(maxConcurrentEvents)
	for _, ev := range events {
		lwg.Add(1)
		go func() {
			defer lwg.Done()
			b.handleEvent(ctx, ev)
		}()
	}
	lwg.Wait()
}

func (b *Bot) handleEvent(ctx context.Context, ev line.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logf("bot: panic handling %s event: %v", ev.Type, r)
		}
	}()

	switch ev.Type {
	case line.EventJoin:
		b.handleJoin(ctx, ev)
	case line.EventMessage:
		b.handleMessage(ctx, ev)
	}
}

func (b *Bot) handleMessage(ctx context.Context, ev line.Event) {
	if ev.Message == nil || ev.Message.Type != "text" || strings.TrimSpace(ev.Message.Text) == "" {
		return
	}

	var (
		text      = strings.TrimSpace(ev.Message.Text)
		userID    = ev.Source.UserID
		container = ev.Source.ContainerID()
		role      = b.roleOf(userID)
	)

	// Identity commands answer before any authorization check, from anyone,
	// anywhere.
	switch text {
	case "/myid":
		b.reply(ctx, ev, "USER ID:\n"+userID)
		return
	case "/groupid":
		if container == "" {
			b.reply(ctx, ev, msgNotGroup)
			return
		}
		b.reply(ctx, ev, "GROUP ID:\n"+container)
		return
	}

	// Authorization gate. Owners and admins bypass it entirely, so they can
	// issue /authcode and friends inside an as-yet-unauthorized container.
	if container != "" && role < RoleAdmin && b.State.AuthStateOf(container) != Allowed {
		b.reply(ctx, ev, msgNotAuthorized)
		b.leave(ctx, ev.Source)
		return
	}

	if strings.HasPrefix(text, "/") {
		b.runCommand(ctx, ev, text, role, container)
		return
	}

	b.translateAndReply(ctx, ev, text)
}

func (b *Bot) translateAndReply(ctx context.Context, ev line.Event, text string) {
	source := translate.Detect(text)
	target := translate.TargetFor(source)

	translated, err := b.Translator.Translate(ctx, text, target)
	if err != nil {
		// Drop the event instead of echoing upstream diagnostics to the chat.
		b.logf("bot: translating message in %q: %v", ev.Source.ContainerID(), err)
		return
	}

	b.reply(ctx, ev, "原文："+text+"\n翻譯："+translated)
}

func (b *Bot) reply(ctx context.Context, ev line.Event, text string) {
	if err := b.LINE.Reply(ctx, ev.ReplyToken, text); err != nil {
		b.logf("bot: replying to %s event: %v", ev.Type, err)
	}
}
