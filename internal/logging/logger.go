package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Init builds the process logger and installs it as slog's default.
// Development logs text at debug level, production logs JSON at info level.
// With a Sentry DSN, error records are also forwarded to Sentry.
func Init(isDev bool, sentryDSN string) *slog.Logger {
	return initWith(os.Stdout, isDev, sentryDSN)
}

func initWith(w io.Writer, isDev bool, sentryDSN string) *slog.Logger {
	var handlers []slog.Handler

	if isDev {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		} else {
			slog.New(handlers[0]).Warn("[logging] sentry init failed", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Flush drains buffered Sentry events. Safe to call when Sentry is disabled.
func Flush() {
	sentry.Flush(2 * time.Second)
}
