package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	debugDir    = "debug"
	logFilePath = "replaytv.log"
)

var atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func Init(logLevel string, logFile bool) {
	simpleTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     simpleTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	SetLevel(logLevel)
	// stderr keeps stdout clean for cli output
	core := zapcore.NewCore(
		consoleEncoder,
		zapcore.Lock(os.Stderr),
		atomicLevel,
	)
	if logFile {
		if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(file),
				atomicLevel,
			)
			core = zapcore.NewTee(core, fileCore)
		}
	}
	logger := zap.New(
		core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	zap.ReplaceGlobals(logger)
}

func SetLevel(logLevel string) {
	atomicLevel.SetLevel(getZapLevel(logLevel))
}

func getZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// WriteFile dumps a raw payload under debug/ when debug logging is on.
func WriteFile(name string, data []byte) {
	if !atomicLevel.Enabled(zapcore.DebugLevel) {
		return
	}
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		zap.S().Warnf("failed to create debug dir: %v", err)
		return
	}
	fileName := fmt.Sprintf("%s_%d.txt", name, time.Now().UnixNano())
	path := filepath.Join(debugDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		zap.S().Warnf("failed to write debug file: %v", err)
		return
	}
	zap.S().Debugf("wrote %s (%s)", path, humanize.Bytes(uint64(len(data))))
}

func Sync() error {
	return zap.L().Sync()
}
