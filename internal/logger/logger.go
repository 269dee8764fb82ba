// Package logger builds the process-wide zap logger: JSON lines with ISO-8601
// timestamps and lowercase levels, written to a rotating file when a log
// directory is configured and teed to stdout when requested.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects sinks and the minimum level.
type Options struct {
	Dir   string // Directory for tenantmap.log; empty disables the file sink
	Level string // debug, info, warn or error
	Tee   bool   // Also write console output to stdout
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	MessageKey:     "msg",
	CallerKey:      "caller",
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// New returns a sugared logger and installs it with zap.ReplaceGlobals so
// zap.S() works everywhere after startup.
func New(opts Options) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	var (
		cores     []zapcore.Core
		errOutput zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "tenantmap.log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileSink, level))
		errOutput = fileSink
	}

	if opts.Tee || opts.Dir == "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(errOutput)).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "level", level.String(), "dir", opts.Dir, "tee", opts.Tee)
	return z, nil
}

// NewWriter returns a JSON logger writing to w. It does not touch the
// globals and is meant for tests and embedded use.
func NewWriter(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}
