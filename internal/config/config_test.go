package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccview.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplatesLoad(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"session", "ssl"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("expected existing %s template to be kept", kind)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load %s template: %v", kind, err)
		}
		if cfg.Protocol != "demo" {
			t.Fatalf("unexpected protocol %q", cfg.Protocol)
		}
	}
	if _, err := Template("nope"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeFile(t, "protocol = \"raw_data\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "ccview" || cfg.Socket.Type != "tcp_client" || cfg.HTTP.Addr != ":9400" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Protocol != "raw_data" {
		t.Fatalf("unexpected protocol %q", cfg.Protocol)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"filter type": "[[filters]]\nlabel = \"x\"\n",
		"negative":    "[session]\nqueue_size = -1\n",
		"empty addr":  "[http]\naddr = \"\"\n",
		"syntax":      "protocol = \n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestSessionLoopConversion(t *testing.T) {
	testlog.Start(t)
	out := SessionLoop(SessionConfig{ManualConnect: true, ConnectTimeoutMS: 1500, LogLimit: 5})
	if out.ConnectOnStart {
		t.Fatalf("expected manual connect")
	}
	if out.ConnectTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeout %v", out.ConnectTimeout)
	}
	if out.LogLimit != 5 || out.QueueSize != 64 {
		t.Fatalf("unexpected loop config %+v", out)
	}
}

func TestBuildSessionFromFile(t *testing.T) {
	testlog.Start(t)
	body := `protocol = "demo"

[socket]
type = "null"

[[filters]]
type = "length_prefix"

[filters.options]
size_len = 4

[[filters]]
type = "tap"
`
	cfg, err := Load(writeFile(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := BuildSession(cfg, plugins.Default(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Chain().Len() != 2 {
		t.Fatalf("expected 2 filters, got %d", s.Chain().Len())
	}
	if s.Socket().Name() != "null" || s.Protocol().Name() != "Demo" {
		t.Fatalf("unexpected session wiring %s/%s", s.Socket().Name(), s.Protocol().Name())
	}

	cfg.Protocol = "missing"
	if _, err := BuildSession(cfg, plugins.Default(), nil); err == nil {
		t.Fatalf("expected unknown protocol error")
	}
}
