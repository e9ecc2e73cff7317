package settings

import (
	"time"

	"go.uber.org/zap"
)

// RuleLogEvent describes a rule evaluation attempt for logging.
type RuleLogEvent struct {
	Engine   string
	Rule     string
	Key      string
	Duration time.Duration
	Err      error
}

// RuleLogger records rule evaluation events.
type RuleLogger interface {
	LogRule(RuleLogEvent)
}

// RuleLoggerFunc adapts a function to RuleLogger.
type RuleLoggerFunc func(RuleLogEvent)

// LogRule implements RuleLogger.
func (f RuleLoggerFunc) LogRule(event RuleLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopRuleLogger struct{}

func (noopRuleLogger) LogRule(RuleLogEvent) {}

// ZapRuleLogger adapts a zap logger to RuleLogger. Failed evaluations log at
// warn, successful ones at debug.
func ZapRuleLogger(logger *zap.Logger) RuleLogger {
	if logger == nil {
		return noopRuleLogger{}
	}
	return RuleLoggerFunc(func(event RuleLogEvent) {
		fields := []zap.Field{
			zap.String("engine", event.Engine),
			zap.String("rule", event.Rule),
			zap.String("key", event.Key),
			zap.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			logger.Warn("settings: rule evaluation failed", append(fields, zap.Error(event.Err))...)
			return
		}
		logger.Debug("settings: rule evaluated", fields...)
	})
}
