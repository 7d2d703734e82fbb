package slides

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logOff sits above every zap level so nothing is enabled.
const logOff = zapcore.FatalLevel + 1

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"off":   logOff,
}

func parseLogLevel(level string) (zapcore.Level, error) {
	l, ok := logLevels[level]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %q", level)
	}
	return l, nil
}

// NewLogger builds a console logger writing to w (stderr when nil) at the given level.
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == logOff {
		return zap.NewNop(), nil
	}
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core), nil
}
