// Package harvestlog wraps zerolog the way the rest of the ecosystem does:
// a thin struct around zerolog.Logger, with domain-specific helpers layered
// on top of the generic Debug/Info/Warn/Error entry points.
package harvestlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or file path
}

// Logger wraps zerolog.Logger with calculation-specific helpers. It carries
// no mutable state beyond the underlying zerolog.Logger, so a *Logger may
// be shared across concurrent calculations.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger from Config.
func New(config Config) *Logger {
	level := parseLevel(config.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch config.OutputPath {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.OutputPath).Msg("failed to open log file")
		}
		output = file
	}

	if config.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return &Logger{logger: zerolog.New(output).With().Timestamp().Caller().Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Zerolog returns the wrapped logger for callers that need to pass it into
// engine.Options.Logger.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.logger }

// LogCalculation logs the outcome of one engine call.
func (l *Logger) LogCalculation(calculationID string, algorithm string, success bool, durationMS int64, recommendationCount int) {
	l.Info().
		Str("calculation_id", calculationID).
		Str("algorithm", algorithm).
		Bool("success", success).
		Int64("duration_ms", durationMS).
		Int("recommendation_count", recommendationCount).
		Msg("calculation completed")
}

// LogEngineError logs a structured EngineError with its kind and stage.
func (l *Logger) LogEngineError(kind string, stage string, message string) {
	l.Error().
		Str("error_kind", kind).
		Str("stage", stage).
		Msg(message)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

var globalLogger *Logger

// InitGlobal initializes the package-level logger returned by Global.
func InitGlobal(config Config) {
	globalLogger = New(config)
}

// Global returns the package-level logger, initializing a default one on
// first use.
func Global() *Logger {
	if globalLogger == nil {
		globalLogger = New(Config{Level: "info", Format: "json"})
	}
	return globalLogger
}
