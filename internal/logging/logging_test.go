package logging

import (
	"testing"

	"github.com/rs/zerolog"

	"battlebee/internal/config"
)

func TestLevelFromConfig(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := New(config.LogConfig{Level: c.level}).GetLevel(); got != c.want {
			t.Fatalf("level %q: got %s, want %s", c.level, got, c.want)
		}
	}
	if got := New(config.LogConfig{Level: "error", Pretty: true}).GetLevel(); got != zerolog.ErrorLevel {
		t.Fatalf("pretty logger level=%s", got)
	}
}
