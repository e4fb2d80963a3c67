package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologConfig configures NewZerologLogger.
type ZerologConfig struct {
	Level     LogLevel
	Pretty    bool // console writer instead of JSON
	Output    io.Writer
	Component string
}

// ZerologAdapter implements Logger over zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologLogger builds a zerolog backed Logger with timestamps.
func NewZerologLogger(cfg ZerologConfig) *ZerologAdapter {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	ctx := zerolog.New(out).Level(zerologLevel(cfg.Level)).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}

	return &ZerologAdapter{logger: ctx.Logger()}
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(l zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: l}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) { z.emit(z.logger.Debug(), msg, args) }

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) { z.emit(z.logger.Info(), msg, args) }

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) { z.emit(z.logger.Warn(), msg, args) }

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) { z.emit(z.logger.Error(), msg, args) }

// emit attaches key/value pairs. A dangling key is logged under "!BADKEY",
// matching slog.
func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			ev = ev.Interface("!BADKEY", args[i])
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		switch v := args[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}

	ev.Msg(msg)
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
