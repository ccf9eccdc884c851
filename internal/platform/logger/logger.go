// Package logger builds the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger tagged with the service name. The level
// follows BLOCKVERIFY_ENV: debug in development, info everywhere else, so
// local runs show commitment and anchoring detail without flooding
// production output.
func New() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("BLOCKVERIFY_ENV") {
	case "", "development":
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "blockverify")
}
