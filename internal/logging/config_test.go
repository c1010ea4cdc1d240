package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":       zerolog.TraceLevel,
		"diagnostics": zerolog.TraceLevel,
		" DEBUG ":     zerolog.DebugLevel,
		"warning":     zerolog.WarnLevel,
		"off":         zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("parseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := parseLevel("loud"); ok {
		t.Fatalf("unknown level must not be accepted")
	}
	if _, ok := parseLevel(""); ok {
		t.Fatalf("empty level must not override")
	}
}

func TestEnvOverridesApplyOnTopOfProfile(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogTimestamp, "nope")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("level override not applied: %v", cfg.Level)
	}
	if !cfg.NoColor {
		t.Fatalf("nocolor override not applied")
	}
	if !cfg.Timestamp {
		t.Fatalf("invalid bool must keep runtime timestamp default")
	}
}

func TestApplyBypassWritesJSON(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	apply(Config{Level: zerolog.InfoLevel, Bypass: true}, &buf)
	log.Info().Str("k", "v").Msg("hello")
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}
