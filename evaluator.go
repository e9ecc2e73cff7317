package settings

import (
	"fmt"
	"time"
)

// RuleContext carries the inputs for one rule evaluation: the key being
// written and the candidate value, plus optional caller-supplied arguments
// and metadata.
type RuleContext struct {
	Key      string
	Value    any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// evaluateRule runs expr through evaluator, timing the attempt and reporting
// it to logger.
func evaluateRule(evaluator Evaluator, logger RuleLogger, ctx RuleContext, expr string) (any, error) {
	ctx = ctx.withDefaults()
	engine := engineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	err = wrapEvaluationError(engine, expr, ctx.Key, err)
	logger.LogRule(RuleLogEvent{
		Engine:   engine,
		Rule:     expr,
		Key:      ctx.Key,
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*settings.exprEvaluator":
		return "expr"
	case "*settings.celEvaluator":
		return "cel"
	case "*settings.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
