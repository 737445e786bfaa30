// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
)

func testEnv(args ...string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Env{
		Args:   args,
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestRun(t *testing.T) {
	t.Parallel()

	var ran bool
	app := AppFunc(func(ctx context.Context) error {
		ran = true
		return nil
	})

	env, _, _ := testEnv()
	if err := Run(WithEnv(context.Background(), env), app); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("app did not run")
	}
}

func TestRunVersionFlag(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(ctx context.Context) error {
		t.Fatal("app must not run with -version")
		return nil
	})

	env, _, stderr := testEnv("-version")
	err := Run(WithEnv(context.Background(), env), app)
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("want ErrExitVersion, got %v", err)
	}
	if stderr.Len() == 0 {
		t.Fatal("version must be printed to stderr")
	}
}

func TestRunHelpFlag(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(ctx context.Context) error { return nil })

	env, _, _ := testEnv("-h")
	err := Run(WithEnv(context.Background(), env), app)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want flag.ErrHelp, got %v", err)
	}
	if isPrintableError(err) {
		t.Fatal("help error must not be printable")
	}
}

func TestRunUnknownFlag(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(ctx context.Context) error { return nil })

	env, _, stderr := testEnv("-no-such-flag")
	err := Run(WithEnv(context.Background(), env), app)
	if err == nil {
		t.Fatal("must fail on unknown flag")
	}
	if isPrintableError(err) {
		t.Fatal("flag parse errors are already printed by the flag package")
	}
	if !strings.Contains(stderr.String(), "no-such-flag") {
		t.Fatalf("stderr must mention the unknown flag, got: %q", stderr.String())
	}
}

type flagApp struct {
	name string
	args []string
}

func (a *flagApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.name, "name", "", "Name.")
}

func (a *flagApp) Run(ctx context.Context) error {
	a.args = GetEnv(ctx).Args
	return nil
}

func TestRunFlagsAndArgs(t *testing.T) {
	t.Parallel()

	app := &flagApp{}
	env, _, _ := testEnv("-name", "foo", "bar", "baz")
	if err := Run(WithEnv(context.Background(), env), app); err != nil {
		t.Fatal(err)
	}
	if app.name != "foo" {
		t.Fatalf("want name %q, got %q", "foo", app.name)
	}
	// Remaining arguments are available to the app via the environment.
	if len(app.args) != 2 || app.args[0] != "bar" || app.args[1] != "baz" {
		t.Fatalf("unexpected args: %v", app.args)
	}
}

func TestGetEnvFallback(t *testing.T) {
	t.Parallel()

	env := GetEnv(context.Background())
	if env == nil {
		t.Fatal("GetEnv must never return nil")
	}
}

func TestEnvLogf(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv()
	env.Logf("hello %s", "world")
	if !strings.Contains(stderr.String(), "hello world") {
		t.Fatalf("stderr must contain the logged message, got: %q", stderr.String())
	}
}
