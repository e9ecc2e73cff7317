package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goliatone/go-settings/pkg/notify"
	"go.uber.org/zap"
)

const (
	defaultNamespace = "go-settings"
	defaultFileName  = "properties.json"
)

// Store is the process-wide keyed value store with typed access, atomic
// persistence, and change notification. A single reader/writer lock guards
// the value map, the item registry, and the configured flag.
//
// Construct one with New, wire it through dependency injection, and call
// Configure once at startup. Accessors invoked before Configure trigger
// configuration with the default per-user location.
type Store struct {
	mu  sync.RWMutex
	cfg storeConfig

	values     map[string]string
	items      []AnyItem
	configured bool
	path       string
	backend    Backend

	emitter   *notify.Emitter
	evaluator Evaluator
}

// New constructs an unconfigured Store.
func New(opts ...Option) *Store {
	cfg := applyOptions(opts)
	return &Store{
		cfg:       cfg,
		evaluator: cfg.evaluator,
		emitter: notify.NewEmitter(cfg.hooks, notify.Config{
			Enabled: len(cfg.hooks) > 0,
			Channel: cfg.channel,
		}),
	}
}

// Configure performs one-time initialization: it resolves the target file
// path, creates the containing directory, and loads existing persisted state.
// Subsequent calls are no-ops. Directory creation failure is fatal and
// returned; a corrupt or unreadable file is logged and the store starts
// empty.
func (s *Store) Configure(dir, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configureLocked(dir, file)
}

func (s *Store) configureLocked(dir, file string) error {
	if s.configured {
		return nil
	}

	if file == "" {
		file = s.cfg.fileName
	}

	backend := s.cfg.backend
	if backend == nil {
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("settings: resolve config dir: %w", err)
			}
			dir = filepath.Join(base, s.cfg.namespace)
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("settings: create %s: %w", dir, err)
		}
		s.path = filepath.Join(dir, file)
		backend = newFileBackend(s.path)
	}

	values, err := backend.Load()
	if err != nil {
		s.cfg.logger.Warn("settings: load failed, starting empty",
			zap.String("path", s.path), zap.Error(err))
		values = map[string]string{}
	}

	s.values = values
	s.backend = backend
	s.configured = true
	return nil
}

// ensureConfigured lazily initializes the store with defaults. If even the
// default location is unusable the store falls back to an in-memory backend
// so reads and writes keep working; the failure is logged.
func (s *Store) ensureConfigured() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured {
		return
	}
	if err := s.configureLocked("", ""); err != nil {
		s.cfg.logger.Error("settings: default configuration failed, using in-memory state",
			zap.Error(err))
		s.values = map[string]string{}
		s.backend = NewMemoryBackend()
		s.configured = true
	}
}

// Get returns the value stored under key decoded as T, or def when the key is
// absent or the stored string does not parse. Get never fails.
func Get[T any](s *Store, key string, def T) T {
	s.ensureConfigured()

	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return def
	}

	value, err := Decode[T](key, raw)
	if err != nil {
		s.cfg.logger.Warn("settings: decode failed, returning default",
			zap.String("key", key), zap.Error(err))
		s.cfg.metrics.incDecodeFailures()
		return def
	}
	return value
}

// Set encodes value and stores it under key. Storing a value identical to the
// current one is a no-op: no write, no event, no save. On change the store
// emits a notification and, unless save is false, persists to disk.
func Set[T any](s *Store, key string, value T, save ...bool) {
	s.ensureConfigured()

	encoded, err := Encode(value)
	if err != nil {
		s.cfg.logger.Error("settings: encode failed, value dropped",
			zap.String("key", key), zap.Error(err))
		return
	}

	s.mu.Lock()
	prev, existed := s.values[key]
	if existed && prev == encoded {
		s.mu.Unlock()
		return
	}
	s.values[key] = encoded
	item := s.lookupLocked(key)
	s.mu.Unlock()

	s.cfg.metrics.incChanges()
	s.emit(notify.ActionSet, key, item)

	if len(save) == 0 || save[0] {
		_ = s.Save()
	}
}

// Unset removes key from the store. Removing an absent key is a no-op; a
// successful removal emits a notification and persists.
func (s *Store) Unset(key string) {
	s.ensureConfigured()

	s.mu.Lock()
	_, existed := s.values[key]
	if !existed {
		s.mu.Unlock()
		return
	}
	delete(s.values, key)
	item := s.lookupLocked(key)
	s.mu.Unlock()

	s.cfg.metrics.incChanges()
	s.emit(notify.ActionUnset, key, item)
	_ = s.Save()
}

// Save persists the property map through the backend. An empty map is a
// no-op so a fresh store never shadows a legitimately absent file. The
// snapshot and write run under the read lock; the persisted file reflects a
// state no earlier than the most recent completed write before this call.
// I/O failures are logged and returned, and leave in-memory state untouched.
func (s *Store) Save() error {
	s.ensureConfigured()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.values) == 0 {
		return nil
	}

	snapshot := make(map[string]string, len(s.values))
	for key, value := range s.values {
		snapshot[key] = value
	}

	if err := s.backend.Save(snapshot); err != nil {
		s.cfg.logger.Error("settings: save failed, in-memory state preserved",
			zap.String("path", s.path), zap.Error(err))
		s.cfg.metrics.incSaveFailures()
		return err
	}
	s.cfg.metrics.incSaves()
	return nil
}

// Register adds item to the registry and binds it to this store. Key
// uniqueness is enforced by the owning Group, not here. When the item was
// declared with WithReset any persisted value for its key is cleared so the
// default takes effect until the next explicit set.
func (s *Store) Register(item AnyItem) {
	if item == nil {
		return
	}
	s.ensureConfigured()

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	item.bind(s)

	if item.resetRequested() {
		s.Unset(item.Key())
	}
}

// Lookup returns the registered descriptor for key, or false when no
// descriptor exists.
func (s *Store) Lookup(key string) (AnyItem, bool) {
	s.ensureConfigured()

	s.mu.RLock()
	defer s.mu.RUnlock()
	item := s.lookupLocked(key)
	return item, item != nil
}

// ItemOf returns the descriptor for key narrowed to its declared type.
func ItemOf[T any](s *Store, key string) (*Item[T], bool) {
	generic, ok := s.Lookup(key)
	if !ok {
		return nil, false
	}
	item, ok := generic.(*Item[T])
	return item, ok
}

func (s *Store) lookupLocked(key string) AnyItem {
	for _, item := range s.items {
		if item.Key() == key {
			return item
		}
	}
	return nil
}

// Has reports whether key currently holds a stored value.
func (s *Store) Has(key string) bool {
	s.ensureConfigured()
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.ensureConfigured()
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.ensureConfigured()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Path returns the resolved persisted file path, empty until Configure ran
// with the file backend.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Close flushes pending state. It exists for lifecycle symmetry with New and
// Configure; the store has no background resources.
func (s *Store) Close() error {
	return s.Save()
}

// raw returns the stored string for key without decoding.
func (s *Store) raw(key string) (string, bool) {
	s.ensureConfigured()
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *Store) emit(action notify.Action, key string, item AnyItem) {
	if !s.emitter.Enabled() {
		return
	}
	event := notify.Event{
		Action: action,
		Key:    key,
	}
	if item != nil {
		event.Item = item
	}
	if err := s.emitter.Emit(context.Background(), event); err != nil {
		s.cfg.logger.Warn("settings: notification hook failed",
			zap.String("key", key), zap.Error(err))
	}
}

// checkRule evaluates an item validation rule against a candidate value. A
// rule must produce boolean true to accept the value.
func (s *Store) checkRule(key, rule string, value any) error {
	if rule == "" {
		return nil
	}
	evaluator := s.resolveEvaluator()
	ctx := RuleContext{Key: key, Value: value}
	result, err := evaluateRule(evaluator, s.ruleLogger(), ctx, rule)
	if err != nil {
		return err
	}
	accepted, ok := result.(bool)
	if !ok {
		return wrapEvaluationError(engineName(evaluator), rule, key,
			fmt.Errorf("rule produced %T, want bool", result))
	}
	if !accepted {
		return fmt.Errorf("%w: %s rejected by rule %q", ErrRuleViolation, key, rule)
	}
	return nil
}

func (s *Store) resolveEvaluator() Evaluator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evaluator != nil {
		return s.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if s.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(s.cfg.programCache))
	}
	if s.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(s.cfg.functions))
	}
	s.evaluator = NewExprEvaluator(exprOpts...)
	return s.evaluator
}

func (s *Store) ruleLogger() RuleLogger {
	if s.cfg.ruleLogger != nil {
		return s.cfg.ruleLogger
	}
	return noopRuleLogger{}
}
