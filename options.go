package settings

import (
	"github.com/goliatone/go-settings/pkg/notify"
	"go.uber.org/zap"
)

// Option configures a Store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	logger       *zap.Logger
	namespace    string
	fileName     string
	hooks        notify.Hooks
	channel      string
	metrics      *Metrics
	backend      Backend
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	ruleLogger   RuleLogger
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.namespace == "" {
		cfg.namespace = defaultNamespace
	}
	if cfg.fileName == "" {
		cfg.fileName = defaultFileName
	}
	return cfg
}

// WithLogger attaches a structured logger to the store. Recoverable failures
// (decode, load, save, hook errors) are reported here. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		cfg.logger = logger
	}
}

// WithNamespace sets the per-user configuration subdirectory used when no
// explicit directory is given to Configure.
func WithNamespace(namespace string) Option {
	return func(cfg *storeConfig) {
		cfg.namespace = namespace
	}
}

// WithFileName overrides the default persisted file name.
func WithFileName(name string) Option {
	return func(cfg *storeConfig) {
		cfg.fileName = name
	}
}

// WithHooks attaches change-notification hooks. Hooks are cloned and nil
// entries dropped.
func WithHooks(hooks notify.Hooks) Option {
	normalized := cloneNotifyHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.hooks = normalized
	}
}

// WithChannel sets the default channel stamped on emitted events.
func WithChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.channel = channel
	}
}

// WithMetrics attaches a metrics collector to the store.
func WithMetrics(metrics *Metrics) Option {
	return func(cfg *storeConfig) {
		cfg.metrics = metrics
	}
}

// WithBackend overrides the persistence backend installed by Configure.
// Useful for tests and ephemeral stores.
func WithBackend(backend Backend) Option {
	return func(cfg *storeConfig) {
		cfg.backend = backend
	}
}

// WithRuleEvaluator configures the evaluator used for item validation rules.
func WithRuleEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-rule cache used by the default
// evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures custom functions available to rule
// expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *storeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for rule expressions.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *storeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithRuleLogger attaches a rule evaluation logger.
func WithRuleLogger(logger RuleLogger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.ruleLogger = noopRuleLogger{}
			return
		}
		cfg.ruleLogger = logger
	}
}

func cloneNotifyHooks(hooks notify.Hooks) notify.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]notify.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return notify.Hooks(normalized)
}
