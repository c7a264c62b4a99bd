// v1
// logging.go

package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init builds the process logger. Output goes to stdout and, unless the
// file cannot be opened, to the append-only file named by LOG_PATH.
func Init(service string) *slog.Logger {
	logPath := os.Getenv("LOG_PATH")
	if logPath == "" {
		logPath = "hydrosim.log"
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
		l := slog.New(handler).With("service", service)
		l.Error("failed to open log file", "path", logPath, "err", err)
		return l
	}
	mw := io.MultiWriter(os.Stdout, f)
	handler := slog.NewTextHandler(mw, &slog.HandlerOptions{Level: slog.LevelInfo})
	l := slog.New(handler).With("service", service)
	l.Info("logger initialized", "file", logPath)
	return l
}
