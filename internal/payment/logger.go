package payment

import "go.uber.org/zap"

// ZapLogger adapts a zap logger to Logger.
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(logger *zap.Logger) ZapLogger {
	return ZapLogger{logger: logger}
}

func (z ZapLogger) Error(msg string) {
	z.logger.Error(msg, zap.String("component", "transfers24"))
}
