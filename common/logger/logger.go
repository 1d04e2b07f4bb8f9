package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Package logger provides a unified logging facade for the docqa system.
// It wraps a zap logger so callers never deal with zap directly.

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	// Default console logger until Init is called with real config.
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	sugar = zap.New(core).Sugar()
}

// Options configures the process logger.
type Options struct {
	Level string
	File  string
	Dev   bool
}

// Init replaces the default logger according to opts. Safe to call once at startup.
func Init(opts Options) {
	SetLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.MessageKey = "message"
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEnc := zapcore.NewJSONEncoder(encCfg)

	var consoleEnc zapcore.Encoder
	if opts.Dev {
		consoleEnc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		consoleEnc = jsonEnc
	}
	// The MCP transport owns stdout, so logs go to stderr.
	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), level)}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // Megabytes
			MaxBackups: 5,
			MaxAge:     30, // Days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEnc, zapcore.AddSync(rotator), level))
	}

	l := zap.New(zapcore.NewTee(cores...))
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// SetLevel adjusts the minimum log level ("debug", "info", "warn", "error").
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "", "info":
		level.SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Sync()
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}
