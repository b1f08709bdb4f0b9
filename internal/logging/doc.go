// Package logging is projectdeck's structured logger, a thin layer over zap.
//
// Every method takes a context.Context and prepends the correlation fields
// it carries: the active OpenTelemetry span, the viewer browsing the
// catalog (WithViewerID) and the HTTP request id (WithRequestID).
//
//	cfg, err := logging.FromSettings(settings.Logging)
//	logger, err := logging.NewLogger(cfg, nil)
//	defer logger.Close()
//
//	ctx = logging.WithViewerID(ctx, user.ID)
//	logger.Warn(ctx, "catalog fetch failed", zap.Stringer("kind", fe.Kind))
//
// Output goes to stderr, stdout, a file, or the OTEL log bridge. The
// interactive browser owns the terminal and therefore logs to a file.
//
// Fields named in the redaction config (token, authorization and so on)
// and values matching its patterns are masked by the encoder. Secret and
// RedactedString log a value's length only.
//
// Below Error, each level has its own per-second budget (see
// DefaultLevelSamplingConfig). Error and above are never sampled.
//
// TestLogger records entries in memory for assertions in tests.
package logging
