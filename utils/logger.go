package utils

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestId"

// DefaultLogger is the process-wide structured logger.
var DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel replaces DefaultLogger with one at the given level.
func SetLevel(name string) {
	DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLevel(name)}))
}

func Debug(msg string, args ...any) { DefaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { DefaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { DefaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { DefaultLogger.Error(msg, args...) }

func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([?&]key=)[^&\s"]+`),
	regexp.MustCompile(`("(?:api-key|apiKey|appKey|secretKey)"\s*:\s*")[^"]*`),
	regexp.MustCompile(`((?i:api-key):\s*)\S+`),
}

// RedactSensitiveData masks vendor credentials in URLs, headers and JSON bodies.
func RedactSensitiveData(input string) string {
	result := input
	for _, p := range secretPatterns {
		result = p.ReplaceAllString(result, "${1}[REDACTED]")
	}
	return result
}

// VendorRequest logs an outbound vendor call at debug level.
func VendorRequest(ctx context.Context, vendor, method, url string, size int) {
	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	DefaultLogger.DebugContext(ctx, "vendor request",
		"vendor", vendor,
		"method", method,
		"url", RedactSensitiveData(url),
		"bytes", size,
	)
}

// VendorResponse logs the outcome of a vendor call. Failures are logged at
// warn level with a redacted body snippet.
func VendorResponse(ctx context.Context, vendor string, statusCode int, body string, err error) {
	attrs := []any{"vendor", vendor, "status_code", statusCode}
	if err != nil {
		DefaultLogger.WarnContext(ctx, "vendor call failed", append(attrs, "error", RedactSensitiveData(err.Error()))...)
		return
	}
	if statusCode < 200 || statusCode >= 300 {
		DefaultLogger.WarnContext(ctx, "vendor returned error status", append(attrs, "body", RedactSensitiveData(snippet(body)))...)
		return
	}
	if DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		DefaultLogger.DebugContext(ctx, "vendor response", append(attrs, "body", RedactSensitiveData(snippet(body)))...)
	}
}

func snippet(s string) string {
	return Truncate(s, 500)
}
