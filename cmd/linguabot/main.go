// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.astrophena.name/linguabot/internal/api/line"
	"go.astrophena.name/linguabot/internal/api/openai"
	"go.astrophena.name/linguabot/internal/bot"
	"go.astrophena.name/linguabot/internal/cli"
	"go.astrophena.name/linguabot/internal/logger"
	"go.astrophena.name/linguabot/internal/store"
	"go.astrophena.name/linguabot/internal/translate"
	"go.astrophena.name/linguabot/internal/util/syncx"
	"go.astrophena.name/linguabot/internal/web"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func main() { cli.Main(new(engine)) }

func (e *engine) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&e.prod, "prod", false, "Run in production mode.")
	fs.StringVar(&e.addr, "addr", "localhost:3000", "Listen on `host:port`.")
	fs.StringVar(&e.stateFile, "state", "", "Path to the state `file` (default data/state.json).")
	fs.StringVar(&e.translator, "translator", "", "Translation `engine` to use, openai or gemini (default openai).")
	fs.StringVar(&e.joinModeFlag, "join-mode", "", "Reaction to joining an unauthorized group, leave or pending (default leave).")
}

func (e *engine) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	// Load configuration from environment variables.
	e.lineToken = cmp.Or(e.lineToken, env.Getenv("LINE_CHANNEL_ACCESS_TOKEN"))
	e.lineSecret = cmp.Or(e.lineSecret, env.Getenv("LINE_CHANNEL_SECRET"))
	e.owner = cmp.Or(e.owner, env.Getenv("OWNER_USER_ID"))
	e.openaiKey = cmp.Or(e.openaiKey, env.Getenv("OPENAI_API_KEY"))
	e.geminiKey = cmp.Or(e.geminiKey, env.Getenv("GEMINI_KEY"))
	e.translator = cmp.Or(e.translator, env.Getenv("TRANSLATOR"), "openai")
	e.stateFile = cmp.Or(e.stateFile, env.Getenv("STATE_FILE"), "data/state.json")
	e.joinModeFlag = cmp.Or(e.joinModeFlag, env.Getenv("JOIN_MODE"), "leave")
	if port := env.Getenv("PORT"); port != "" {
		e.addr = ":" + port
	}

	e.stderr = env.Stderr

	// Initialize internal state.
	if err := e.init.Get(func() error {
		return e.doInit(ctx)
	}); err != nil {
		return err
	}

	// Used in tests.
	if e.noServerStart {
		return nil
	}

	if e.prod {
		e.logf("Running in production mode.")
	} else {
		e.logf("Running in development mode.")
	}

	return e.srv.ListenAndServe(ctx)
}

type engine struct {
	init syncx.Lazy[error] // main initialization

	// initialized by doInit
	bot       *bot.Bot
	linec     *line.Client
	logStream logger.Streamer
	logf      logger.Logf
	mux       *http.ServeMux
	scrubber  *strings.Replacer
	srv       *web.Server
	state     *bot.State

	// configuration, read-only after initialization
	addr         string
	geminiKey    string
	httpc        *http.Client
	joinModeFlag string
	lineSecret   string
	lineToken    string
	openaiKey    string
	owner        string
	prod         bool
	stateFile    string
	stderr       io.Writer
	translator   string

	// for tests
	store         store.Store
	noServerStart bool
	ready         func() // see web.Server.Ready
}

const logLineLimit = 300

var (
	errNoLineCredentials = errors.New("no LINE credentials; pass them with LINE_CHANNEL_ACCESS_TOKEN and LINE_CHANNEL_SECRET environment variables")
	errNoOwner           = errors.New("no owner; pass it with OWNER_USER_ID environment variable")
)

func (e *engine) doInit(ctx context.Context) error {
	if e.httpc == nil {
		e.httpc = &http.Client{
			// Increase timeout to properly handle translation engine response
			// times.
			Timeout: 60 * time.Second,
		}
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}

	e.logStream = logger.NewStreamer(logLineLimit)
	e.logf = log.New(io.MultiWriter(e.stderr, &timestampWriter{e.logStream}), "", 0).Printf

	if e.lineToken == "" || e.lineSecret == "" {
		return errNoLineCredentials
	}
	if e.owner == "" {
		return errNoOwner
	}

	var scrubPairs []string
	for _, val := range []string{
		e.lineToken,
		e.lineSecret,
		e.openaiKey,
		e.geminiKey,
	} {
		if val != "" {
			scrubPairs = append(scrubPairs, val, "[EXPUNGED]")
		}
	}
	if len(scrubPairs) > 0 {
		e.scrubber = strings.NewReplacer(scrubPairs...)
	}

	e.linec = &line.Client{
		Token:      e.lineToken,
		Secret:     e.lineSecret,
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}

	translator, err := e.initTranslator(ctx)
	if err != nil {
		return err
	}

	var joinMode bot.JoinMode
	switch e.joinModeFlag {
	case "leave":
		joinMode = bot.JoinModeLeave
	case "pending":
		joinMode = bot.JoinModePending
	default:
		return fmt.Errorf("%w: invalid join mode %q", cli.ErrInvalidArgs, e.joinModeFlag)
	}

	if e.store == nil {
		if err := os.MkdirAll(filepath.Dir(e.stateFile), 0o755); err != nil {
			return err
		}
		e.store, err = store.NewJSONFile(e.stateFile)
		if err != nil {
			return fmt.Errorf("opening state file %q: %w", e.stateFile, err)
		}
	}
	// A state file that does not parse is fatal: better to not start than to
	// silently serve with an empty whitelist.
	e.state, err = bot.LoadState(ctx, e.store)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	e.bot = &bot.Bot{
		Owner:      e.owner,
		JoinMode:   joinMode,
		State:      e.state,
		LINE:       e.linec,
		Translator: translator,
		Logf:       e.logf,
	}

	e.initRoutes()
	e.srv = &web.Server{
		Addr:       e.addr,
		Mux:        e.mux,
		Debuggable: !e.prod,
		Ready:      e.ready,
	}

	return nil
}

const (
	openaiModel = "gpt-4o-mini"
	geminiModel = "gemini-1.5-flash"
)

func (e *engine) initTranslator(ctx context.Context) (translate.Translator, error) {
	switch e.translator {
	case "openai":
		if e.openaiKey == "" {
			return nil, errors.New("no OpenAI API key; pass it with OPENAI_API_KEY environment variable")
		}
		return &translate.OpenAI{
			Client: &openai.Client{
				APIKey:     e.openaiKey,
				HTTPClient: e.httpc,
				Scrubber:   e.scrubber,
			},
			Model: openaiModel,
		}, nil
	case "gemini":
		if e.geminiKey == "" {
			return nil, errors.New("no Gemini API key; pass it with GEMINI_KEY environment variable")
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(e.geminiKey))
		if err != nil {
			return nil, err
		}
		return &translate.Gemini{
			Model: translate.NewGeminiModel(client, geminiModel),
		}, nil
	default:
		return nil, fmt.Errorf("%w: invalid translator %q", cli.ErrInvalidArgs, e.translator)
	}
}

func (e *engine) initRoutes() {
	e.mux = http.NewServeMux()
	e.mux.HandleFunc("POST /webhook", e.handleWebhook)

	// The debug interface is only exposed in development mode.
	if !e.prod {
		dbg := web.Debugger(e.mux)
		dbg.KV("Join mode", e.joinModeFlag)
		dbg.KV("Translator", e.translator)
		dbg.Handle("logs", "Logs", e.logStream)
	}
}

// timestampWriter is an io.Writer that prefixes each line with the current date and time.
type timestampWriter struct {
	w io.Writer
}

func (tw *timestampWriter) Write(p []byte) (n int, err error) {
	lines := bytes.SplitAfter(p, []byte{'\n'})

	for _, line := range lines {
		if len(line) > 0 {
			timestamp := time.Now().Format(time.DateTime + "\t")
			_, err := tw.w.Write([]byte(timestamp))
			if err != nil {
				return n, err
			}
			nn, err := tw.w.Write(line)
			n += nn
			if err != nil {
				return n, err
			}
		}
	}

	return n, nil
}
