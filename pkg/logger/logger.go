package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	log   *zap.Logger
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Options configures log level and the optional rolling file sink.
type Options struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init builds the process-wide zap logger with a console core and,
// when Path is set, a lumberjack-rotated file core.
func Init(opts Options) {
	once.Do(func() {
		if opts.Path != "" {
			_ = os.MkdirAll(filepath.Dir(opts.Path), 0o755)
		}

		level := parseLevel(opts.Level)

		encCfg := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     timeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level })

		cores := []zapcore.Core{
			zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(os.Stdout), enabler),
		}

		if opts.Path != "" {
			lj := &lumberjack.Logger{
				Filename:   opts.Path,
				MaxSize:    nz(opts.MaxSizeMB, 100),
				MaxBackups: nz(opts.MaxBackups, 3),
				MaxAge:     nz(opts.MaxAgeDays, 7),
			}
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(lj), enabler))
		}

		log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
		sugar = log.Sugar()
	})
}

// L returns the structured logger, initializing a default one if needed.
func L() *zap.Logger {
	if log == nil {
		Init(Options{})
	}
	return log
}

// Sugar returns the sugared logger for convenience.
func Sugar() *zap.SugaredLogger {
	if sugar == nil {
		Init(Options{})
	}
	return sugar
}

// Sync flushes buffered log entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func nz(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
