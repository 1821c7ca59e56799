package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpupo63/studio-portfolio-backend/config"
)

const serviceName = "studio-portfolio-backend"

// Setup configures the global zerolog logger from config and returns it.
//
//   - LOG_LEVEL: debug | info | warn | error (default info)
//   - ENV: "development" switches stdout to the colored console writer
//   - LOG_FILE: when set, a rotating JSON log file is written alongside stdout
func Setup(c config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var stdout io.Writer = os.Stdout
	if strings.EqualFold(config.GetString(c, "ENV", ""), "development") {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{stdout}
	if file := config.GetString(c, "LOG_FILE", ""); file != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    config.GetInt(c, "LOG_FILE_MAX_MB", 10),
			MaxBackups: config.GetInt(c, "LOG_FILE_MAX_BACKUPS", 3),
			MaxAge:     config.GetInt(c, "LOG_FILE_MAX_AGE_DAYS", 28),
			Compress:   true,
		})
	}

	logger := New(zerolog.MultiLevelWriter(writers...), ParseLevel(config.GetString(c, "LOG_LEVEL", "info")))
	log.Logger = logger
	return logger
}

// New builds a service logger writing to w at level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
