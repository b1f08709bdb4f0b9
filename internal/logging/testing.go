package logging

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger is a Logger that records every entry, for assertions.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger records entries at every level, Trace included.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(TraceLevel)
	return &TestLogger{
		Logger:   &Logger{zap: zap.New(core), config: NewDefaultConfig()},
		observed: observed,
	}
}

// All returns every recorded entry.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// FilterMessage returns entries whose message equals msg.
func (t *TestLogger) FilterMessage(msg string) *observer.ObservedLogs {
	return t.observed.FilterMessage(msg)
}

// Messages returns the messages logged at level, in order.
func (t *TestLogger) Messages(level zapcore.Level) []string {
	var out []string
	for _, e := range t.observed.FilterLevelExact(level).All() {
		out = append(out, e.Message)
	}
	return out
}

// Reset drops everything recorded so far.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

func (t *TestLogger) find(level zapcore.Level, msgContains string) bool {
	for _, e := range t.observed.All() {
		if e.Level == level && strings.Contains(e.Message, msgContains) {
			return true
		}
	}
	return false
}

// AssertLogged fails unless an entry at level contains msgContains.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	if !t.find(level, msgContains) {
		tb.Errorf("expected %s log containing %q, got %q", LevelName(level), msgContains, t.Messages(level))
	}
}

// AssertNotLogged fails if an entry at level contains msgContains.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	if t.find(level, msgContains) {
		tb.Errorf("unexpected %s log containing %q", LevelName(level), msgContains)
	}
}

// AssertField fails unless some entry with message msg carries key with
// the expected value. Values are compared by their printed form, so an
// int field matches 503 and a Stringer matches its String().
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, expected interface{}) {
	tb.Helper()
	want := fmt.Sprint(expected)
	var seen []string
	for _, e := range t.observed.FilterMessage(msg).All() {
		got, ok := e.ContextMap()[key]
		if !ok {
			continue
		}
		if fmt.Sprint(got) == want {
			return
		}
		seen = append(seen, fmt.Sprint(got))
	}
	tb.Errorf("field %q=%v not found in %q (seen %v)", key, expected, msg, seen)
}

var (
	sensitiveKeys = []string{
		"password", "secret", "token", "api_key", "authorization",
		"bearer", "credential", "private_key",
	}
	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bearer\s+\S+`),
		regexp.MustCompile(`(?i)api[_-]?key[=:]\s*\S+`),
	}
)

// AssertNoSecrets fails if a sensitive-looking field holds an unredacted
// string, or if a message or string field matches a credential pattern.
func (t *TestLogger) AssertNoSecrets(tb testing.TB) {
	tb.Helper()
	for _, e := range t.observed.All() {
		for _, re := range sensitivePatterns {
			if re.MatchString(e.Message) {
				tb.Errorf("sensitive pattern in message: %q", e.Message)
			}
		}
		for _, f := range e.Context {
			if f.Type != zapcore.StringType {
				continue
			}
			if isSensitiveKey(f.Key) && f.String != "" && !strings.Contains(f.String, "[REDACTED") {
				tb.Errorf("sensitive field %q not redacted: %q", f.Key, f.String)
			}
			for _, re := range sensitivePatterns {
				if re.MatchString(f.String) {
					tb.Errorf("sensitive pattern in field %q: %q", f.Key, f.String)
				}
			}
		}
	}
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// AssertTraceCorrelation fails unless an entry with message msg has a
// trace_id field.
func (t *TestLogger) AssertTraceCorrelation(tb testing.TB, msg string) {
	tb.Helper()
	for _, e := range t.observed.FilterMessage(msg).All() {
		if _, ok := e.ContextMap()["trace_id"]; ok {
			return
		}
	}
	tb.Errorf("message %q missing trace_id", msg)
}
