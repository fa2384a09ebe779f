// Package logging owns the process-wide structured logger. Console
// output stays quiet unless --debug is set; an optional rotating log
// file captures everything.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = zap.NewNop().Sugar()

// Init configures the global logger. debug lifts the console level to
// Debug; logFile adds a rotating JSON file sink.
func Init(debug bool, logFile string) error {
	consoleLevel := zapcore.WarnLevel
	if debug {
		consoleLevel = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	}

	if logFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(fileWriter),
			zapcore.DebugLevel,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

// Sync flushes buffered log entries. Errors from syncing stderr are
// expected on some platforms and ignored by callers.
func Sync() error {
	return Logger.Sync()
}
