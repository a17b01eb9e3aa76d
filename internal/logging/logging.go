// Package logging содержит общий логгер сервиса на базе zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger - обертка над zap.SugaredLogger
type Logger = *zap.SugaredLogger

var (
	defaultLogger Logger
	logLevel      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerOnce    sync.Once
	output        = &switchSyncer{w: zapcore.AddSync(os.Stdout)}
)

// switchSyncer позволяет сменить вывод уже созданных логгеров
type switchSyncer struct {
	mu sync.RWMutex
	w  zapcore.WriteSyncer
}

func (s *switchSyncer) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchSyncer) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Sync()
}

// SetOutput перенаправляет все логгеры, включая уже созданные
func SetOutput(w io.Writer) {
	output.mu.Lock()
	output.w = zapcore.AddSync(w)
	output.mu.Unlock()
}

// SetLogLevel устанавливает уровень логирования: debug, info, warn, error
func SetLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		logLevel.SetLevel(zapcore.InfoLevel)
	case "debug":
		logLevel.SetLevel(zapcore.DebugLevel)
	case "warn":
		logLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		logLevel.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}

// New создает именованный логгер
func New(name string) Logger {
	return newLogger(name)
}

// DefaultLogger возвращает общий логгер приложения
func DefaultLogger() Logger {
	loggerOnce.Do(func() {
		defaultLogger = newLogger("dochub")
	})
	return defaultLogger
}

// Nop возвращает логгер, который ничего не пишет (для тестов)
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func newLogger(name string) Logger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		output,
		logLevel,
	)

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)).Named(name).Sugar()
}
