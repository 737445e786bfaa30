// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Linguabot is a LINE bot that translates group chat messages between Thai and
Traditional Chinese.

Linguabot receives LINE webhook deliveries, verifies their signature and
handles each event: it answers management commands, gatekeeps which groups
and rooms may use it, and relays any other text message through a translation
engine, replying with the original text and its translation.

Messages containing Thai script are translated to Traditional Chinese;
messages containing Han script are translated to Thai; everything else is
translated to Traditional Chinese.

# Usage

	$ linguabot [flags...]

# Commands

The following commands are recognized in chat. Commands are case-sensitive
and must start the message. Unrecognized commands are silently ignored and
never translated.

Available to everyone, even in unauthorized groups:

	/myid     Replies with your user ID.
	/groupid  Replies with the current group or room ID.

Available to admins:

	/gencode           Generates a single-use authorization code.
	/authcode <code>   Authorizes the current group, consuming the code.
	/addgroup          Authorizes the current group directly.
	/removegroup       Revokes authorization of the current group.
	/groups            Replies with the number of authorized groups.

Available only to the owner:

	/addadmin <id>  Adds a user to the admin set.
	/approve        Approves the current pending group.
	/reject         Rejects the current pending group and leaves it.
	/pending        Lists groups awaiting approval.

A group that hasn't been authorized gets a notice when the bot joins.
Depending on the join mode (-join-mode flag), the bot then either leaves
immediately or stays, waiting for the owner to /approve or /reject it.
Messages from unauthorized groups are not translated: the bot replies with a
notice and leaves, unless the sender is an admin or the owner.

# Environment Variables

The following environment variables can be used to configure Linguabot:

  - LINE_CHANNEL_ACCESS_TOKEN: The LINE Messaging API channel access token.
  - LINE_CHANNEL_SECRET: The LINE channel secret used to verify webhook
    signatures.
  - OWNER_USER_ID: The LINE user ID of the bot owner.
  - OPENAI_API_KEY: The OpenAI API key, used when the translator is "openai".
  - GEMINI_KEY: The Gemini API key, used when the translator is "gemini".
  - TRANSLATOR: The translation engine, overriding the -translator flag.
  - STATE_FILE: The path to the state file, overriding the -state flag.
  - JOIN_MODE: The join mode, overriding the -join-mode flag.
  - PORT: The port to listen on, overriding the -addr flag.

# Debug Interface

Linguabot provides a debug interface at /debug with the following endpoints:

  - /debug/logs: Displays the last 300 lines of logs, streamed automatically.
  - /debug/pprof: Go runtime profiling endpoints.

In production mode the debug interface is disabled.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/linguabot/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
