package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newRunLogger builds the logger for one audit run: human-readable console
// output on stderr plus a JSON debug log in the log directory, so a support
// ticket can carry the full request trace. When the log directory cannot be
// created the run proceeds with console logging only.
func newRunLogger(verbose bool, logDir string) (*zap.SugaredLogger, string, func()) {
	consoleLevel := zapcore.InfoLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel),
	}

	var logPath string
	var file *os.File
	if err := os.MkdirAll(logDir, 0o700); err == nil {
		logPath = filepath.Join(logDir, fmt.Sprintf("audit-%s.log", time.Now().Format("20060102-150405")))
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			file = f
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(f), zapcore.DebugLevel))
		} else {
			logPath = ""
		}
	}

	logger := zap.New(zapcore.NewTee(cores...)).Sugar()
	cleanup := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, logPath, cleanup
}

// newQuietLogger is used by listing commands, which only surface warnings.
func newQuietLogger(verbose bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}
