// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	i := Version()
	if i.Go == "" {
		t.Error("Go version must not be empty")
	}
	if i.OS == "" || i.Arch == "" {
		t.Error("OS and Arch must not be empty")
	}
}

func TestInfoString(t *testing.T) {
	i := Info{
		Version: "v1.2.3",
		Commit:  "abcdef",
		BuiltAt: "2026-01-01T00:00:00Z",
		Go:      "go1.24",
		OS:      "linux",
		Arch:    "amd64",
	}
	s := i.String()
	for _, want := range []string{
		"v1.2.3 (go1.24, linux/amd64)",
		"commit abcdef",
		"built at 2026-01-01T00:00:00Z",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, must contain %q", s, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.Contains(ua, CmdName()+"/") {
		t.Errorf("UserAgent() = %q, must start with the command name", ua)
	}
	if !strings.Contains(ua, "(+https://astrophena.name/bleep-bloop)") {
		t.Errorf("UserAgent() = %q, must contain the bot information URL", ua)
	}
}
