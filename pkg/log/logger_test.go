package log

import (
	"bytes"
	"strings"
	"testing"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
	return l, buf
}

func TestLevelGate(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &TextFormatter{})
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be gated below warn: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn entry missing: %s", out)
	}
}

func TestWithFieldsCarry(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{})
	l = l.With(Component("codec"), Str("room", "lobby"))
	l.Info("parsed", Int("lines", 3))
	out := buf.String()
	for _, want := range []string{"component=codec", "room=lobby", "lines=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.Info("hello", Str("k", "v"))
	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("json output must be newline-terminated")
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("debug"); err != nil || lvl != DebugLevel {
		t.Fatalf("ParseLevel(debug) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
