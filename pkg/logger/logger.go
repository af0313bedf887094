package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.Mutex
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	logFile *lumberjack.Logger
)

// InitLogger configures console output on stderr and, when filename is set,
// a size-rotated log file. stdout is left to the run report.
func InitLogger(level string, filename string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), lvl),
	}

	var file *lumberjack.Logger
	if filename != "" {
		file = &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	base, sugar, logFile = l, l.WithOptions(zap.AddCallerSkip(1)).Sugar(), file
	zap.ReplaceGlobals(l)
	return nil
}

// Close flushes buffered entries and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Init installs a console-only info logger. Used when InitLogger was never
// called (tests, library use).
func Init() {
	_ = InitLogger("info", "")
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.Lock()
	l := base
	mu.Unlock()
	if l == nil {
		Init()
		return L()
	}
	return l
}

// SetForTest swaps the logger, e.g. for zaptest or zap.NewNop, and returns a
// restore func.
func SetForTest(l *zap.Logger) func() {
	mu.Lock()
	prevBase, prevSugar := base, sugar
	base, sugar = l, l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
	return func() {
		mu.Lock()
		base, sugar = prevBase, prevSugar
		mu.Unlock()
	}
}

func s() *zap.SugaredLogger {
	L()
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

func Info(format string, v ...interface{}) {
	s().Infof(format, v...)
}

func Infof(format string, v ...interface{}) {
	s().Infof(format, v...)
}

func Errorf(format string, v ...interface{}) {
	s().Errorf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	s().Warnf(format, v...)
}
