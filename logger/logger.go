package logger

import (
	"go.uber.org/zap"
)

// Log is a no-op logger until Init runs, so packages and tests can log freely.
var Log = zap.NewNop().Sugar()

// Init 初始化全局日志，level 为空时使用 info
func Init(level string) error {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return err
		}
		cfg.Level = lvl
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
