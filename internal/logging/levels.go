package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug (-1). The browser logs each search
// keystroke at this level; almost always filtered out.
const TraceLevel = zapcore.Level(-2)

const traceName = "trace"

// LevelFromString parses a level name. Matching is case-insensitive and
// accepts "trace" in addition to the zap level names.
func LevelFromString(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == traceName {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// LevelName is the inverse of LevelFromString.
func LevelName(l zapcore.Level) string {
	if l == TraceLevel {
		return traceName
	}
	return l.String()
}

// encodeLevel writes lowercase level names, including trace.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}
