package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return slog.New(handler), func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
}

func assertOrdered(t *testing.T, line string, parts ...string) {
	t.Helper()
	pos := -1
	for _, part := range parts {
		idx := strings.Index(line, part)
		if idx == -1 || idx < pos {
			t.Fatalf("%s not found in order within %s", part, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "chat"), slog.LevelInfo, "transition",
		slog.String("status", "ok"),
		slog.String("to", "wait_email"),
		slog.String("from", "check_identity"),
	)

	line := output()
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=chat", "event=transition", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	assertOrdered(t, line, "update_id=42", "user_id=7", "chat_id=9", "from=check_identity", "to=wait_email")
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	ctx := WithRID(Background(), "rid-json")
	ctx = WithTrace(ctx, "5d0c6a3e")

	LogEvent(ctx, log.With("component", "store"), slog.LevelError, "atomic.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "PERSISTENCE"),
	)

	line := output()
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	assertOrdered(t, line,
		`{"ts":`, `"level":"ERROR"`, `"component":"store"`, `"event":"atomic.failed"`,
		`"status":"fail"`, `"rid":"rid-json"`, `"trace_id":"5d0c6a3e"`, `"err":"boom"`, `"err_code":"PERSISTENCE"`)
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	rawRID := BuildRID(123, 456, 789)
	LogEvent(WithRID(Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := output()
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") || strings.Contains(line, "ts_unix_nano=") {
		t.Fatalf("JSON-only keys leaked into KV output: %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("expected default component, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	rawRID := "12:34:56"
	LogEvent(WithRID(Background(), rawRID), log, slog.LevelInfo, "rid.test")

	line := output()
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", line)
	}
}

func TestStructuredHandlerQuotesAndPrunes(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	LogEvent(Background(), log, slog.LevelInfo, "reply",
		slog.String("text", "請輸入 email"),
		slog.String("command", ""),
		slog.String("outcome", "bogus"),
	)

	line := output()
	if !strings.Contains(line, `text="請輸入 email"`) {
		t.Fatalf("expected quoted value, got %s", line)
	}
	if strings.Contains(line, "command=") || strings.Contains(line, "outcome=") {
		t.Fatalf("expected empty and unknown values pruned, got %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	LogEvent(Background(), log, slog.LevelDebug, "noise")
	if line := output(); line != "" {
		t.Fatalf("expected debug line filtered, got %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"35:36:71": "z.10.1z",
		"abc":      "abc",
		"1:x:2":    "1:x:2",
		"":         "",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Fatalf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for range 6 {
		got = append(got, s.Allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Allow() sequence = %v, want %v", got, want)
		}
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler should allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		in       string
		num, den int
	}{
		{"1/10", 1, 10},
		{" 2 / 5 ", 2, 5},
		{"20", 1, 20},
		{"0", 0, 0},
		{"x/y", 0, 0},
		{"", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.in)
		if num != tc.num || den != tc.den {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.in, num, den, tc.num, tc.den)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\u200bb\x07c\nd", 10); got != "abc\nd" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
	if got := SanitizeLimit("課程資料", 2); got != "課程" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}
