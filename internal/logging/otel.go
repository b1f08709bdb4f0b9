package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

const otelScope = "github.com/fyrsmithlabs/projectdeck"

// newDualCore tees the local sinks (redacted) with the OTEL bridge, then
// applies sampling to the result. The closer owns the log file, if any.
func newDualCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, io.Closer, error) {
	local, file, err := localSinks(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	var cores []zapcore.Core
	if len(local) > 0 {
		enc, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			closeFile(file)
			return nil, nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(local...), cfg.Level))
	}
	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, otelzap.NewCore(otelScope, otelzap.WithLoggerProvider(otelProvider)))
	}

	switch len(cores) {
	case 0:
		return nil, nil, fmt.Errorf("no usable log output: otel requested without a provider")
	case 1:
		return newSampledCore(cores[0], cfg.Sampling), fileCloser(file), nil
	default:
		return newSampledCore(zapcore.NewTee(cores...), cfg.Sampling), fileCloser(file), nil
	}
}

func localSinks(out OutputConfig) ([]zapcore.WriteSyncer, *os.File, error) {
	var sinks []zapcore.WriteSyncer
	if out.Stdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if out.Stderr {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}
	if out.File == "" {
		return sinks, nil, nil
	}
	f, err := openLogFile(out.File)
	if err != nil {
		return nil, nil, err
	}
	return append(sinks, zapcore.AddSync(f)), f, nil
}

// fileCloser avoids returning a typed nil io.Closer.
func fileCloser(f *os.File) io.Closer {
	if f == nil {
		return nil
	}
	return f
}

func closeFile(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}

// openLogFile appends to path, creating its directory with 0700 and the
// file with 0600.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
