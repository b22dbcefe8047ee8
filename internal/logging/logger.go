package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// NewLogger builds a console logger at the given level. The level string
// follows zap conventions ("debug", "info", "warn", "error"); an empty
// string means info.
func NewLogger(level string) (*Logger, error) {
	config := zap.NewDevelopmentConfig()

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

func (l *Logger) WithRepo(root string) *zap.Logger {
	return l.With(zap.String("repo", root))
}
