// Package logx 构建进程级 zap logger。
package logx

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// New 生产配置：ISO8601 时间、无采样、无堆栈；level 为空按 info，outputs 为空输出到 stderr。
func New(level string, outputs ...string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, err
		}
	}
	if len(outputs) > 0 {
		zapCfg.OutputPaths = outputs
		zapCfg.ErrorOutputPaths = outputs
	}
	return zapCfg.Build(zap.AddCaller())
}

// Set 替换包级 logger，nil 忽略。
func Set(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}
