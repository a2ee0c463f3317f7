package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emit runs fn against a fresh handler and returns the single rendered line.
func emit(t *testing.T, format logFormat, fn func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: format,
	})
	fn(slog.New(handler))
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := emit(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "app"), slog.LevelInfo, "test.event",
			slog.String("status", "OK"),
			slog.String("cause", "unit"),
		)
	})

	tokens := strings.Split(line, " ")
	require.GreaterOrEqual(t, len(tokens), 6, line)
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
	assert.Contains(t, line, "update_id=42")
	assert.Contains(t, line, "user_id=7")
	assert.Contains(t, line, "chat_id=9")
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	line := emit(t, formatJSON, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", CompScores), slog.LevelError, "score.insert",
			slog.String("status", "fail"),
			Err(errors.New("boom")),
		)
	})

	require.True(t, strings.HasPrefix(line, "{"), line)
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.scores"`, `"event":"score.insert"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		require.True(t, idx > pos, "prefix %s not found in order within %s", pref, line)
		pos = idx
	}
	assert.Contains(t, line, `"err":"boom"`)
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := BuildRID(123, 456, 789)
	ctx := WithRID(context.Background(), raw)

	kv := emit(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, kv, "rid="+CompactRID(raw))
	assert.NotContains(t, kv, "rid_full=")
	assert.Contains(t, kv, "component=app")

	js := emit(t, formatJSON, func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	assert.Contains(t, js, `"rid":"`+CompactRID(raw)+`"`)
	assert.Contains(t, js, `"rid_full":"`+raw+`"`)
	assert.Contains(t, js, `"ts_unix_nano"`)
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	line := emit(t, formatKV, func(log *slog.Logger) {
		log.LogAttrs(context.Background(), slog.LevelInfo, "fallback.message",
			slog.Duration("took", 1499*time.Microsecond),
			slog.String("outcome", "bogus"),
			slog.String("subject", "Русский язык"),
			slog.String("empty", ""),
		)
	})
	assert.Contains(t, line, "event=fallback.message")
	assert.Contains(t, line, "took_ms=1")
	assert.Contains(t, line, `subject="Русский язык"`)
	assert.NotContains(t, line, "outcome=")
	assert.NotContains(t, line, "empty=")
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	line := emit(t, formatKV, func(log *slog.Logger) {
		Debug(context.Background(), CompDB, "hidden")
		log.Debug("hidden")
	})
	assert.Empty(t, line)
}

func TestCompactRIDPassesThroughUnknown(t *testing.T) {
	assert.Equal(t, "3f.co.lx", CompactRID("123:456:789"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "При", SanitizeLimit("Привет", 3))
	assert.Empty(t, SanitizeLimit("x", 0))
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	num, den := parseRatio("2/5")
	assert.Equal(t, [2]int{2, 5}, [2]int{num, den})
	num, den = parseRatio("10")
	assert.Equal(t, [2]int{1, 10}, [2]int{num, den})
}

func TestSummarizeStrings(t *testing.T) {
	s, truncated := SummarizeStrings([]string{"1", "2", "3"}, 2)
	assert.Equal(t, "1, 2", s)
	assert.True(t, truncated)
}
