package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger は構造化ロガーを初期化する。
func NewLogger(app AppConfig, obs ObservabilityConfig) *slog.Logger {
	return newLogger(os.Stdout, app, obs)
}

func newLogger(w io.Writer, app AppConfig, obs ObservabilityConfig) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLevel(obs.LogLevel),
	}

	if app.Environment == "production" || app.Environment == "staging" {
		// JSON フォーマット
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// テキストフォーマット（開発用）
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("app", app.Name),
		slog.String("version", app.Version),
		slog.String("tier", app.Tier),
	)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
