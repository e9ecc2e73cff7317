package settings

import (
	"fmt"
	"reflect"
)

// secretMask replaces secret values in display output.
const secretMask = "*****"

// AnyItem is the type-erased view of an item descriptor, used by the
// registry, groups, and notification payloads.
type AnyItem interface {
	Name() string
	Key() string
	Description() string
	Secret() bool
	StringValue() string
	Display() string
	TypeName() string

	bind(*Store)
	setGroup(*Group)
	resetRequested() bool
}

// ItemOption configures an item descriptor at construction time.
type ItemOption func(*itemConfig)

type itemConfig struct {
	description string
	secret      bool
	reset       bool
	rule        string
}

// WithDescription attaches human-readable documentation to the item.
func WithDescription(description string) ItemOption {
	return func(cfg *itemConfig) {
		cfg.description = description
	}
}

// AsSecret marks the item's value as sensitive; Display renders a fixed mask
// instead of the stored value. Secrecy affects display only, not storage.
func AsSecret() ItemOption {
	return func(cfg *itemConfig) {
		cfg.secret = true
	}
}

// WithReset clears any persisted value for the item's key when it is
// registered, forcing the default until the next explicit set.
func WithReset() ItemOption {
	return func(cfg *itemConfig) {
		cfg.reset = true
	}
}

// WithRule attaches a validation expression checked by SetValue. The rule
// runs against the candidate value (bound as "value", with "key" also in
// scope) and must produce boolean true to accept it.
func WithRule(rule string) ItemOption {
	return func(cfg *itemConfig) {
		cfg.rule = rule
	}
}

// Item is a typed handle over a key in the Store. Descriptors never hold
// their value; reads and writes proxy the store. An item is constructed,
// added to its owning group, then registered with a store — in that order.
type Item[T any] struct {
	name        string
	key         string
	def         T
	description string
	secret      bool
	reset       bool
	rule        string

	group *Group
	st    *Store
}

// NewItem constructs an item descriptor. The descriptor is inert until
// Group.AddItem and Store.Register wire it up.
func NewItem[T any](name, key string, def T, opts ...ItemOption) *Item[T] {
	cfg := itemConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Item[T]{
		name:        name,
		key:         key,
		def:         def,
		description: cfg.description,
		secret:      cfg.secret,
		reset:       cfg.reset,
		rule:        cfg.rule,
	}
}

// Name returns the display name.
func (it *Item[T]) Name() string { return it.name }

// Key returns the stable storage key.
func (it *Item[T]) Key() string { return it.key }

// Description returns the optional documentation string.
func (it *Item[T]) Description() string { return it.description }

// Secret reports whether the value is masked in display output.
func (it *Item[T]) Secret() bool { return it.secret }

// Default returns the declared default value.
func (it *Item[T]) Default() T { return it.def }

// Group returns the owning group, nil before AddItem.
func (it *Item[T]) Group() *Group { return it.group }

// Rule returns the validation expression, empty when none was declared.
func (it *Item[T]) Rule() string { return it.rule }

// TypeName returns the declared value type.
func (it *Item[T]) TypeName() string {
	return reflect.TypeOf(&it.def).Elem().String()
}

// Value returns the current value from the store, falling back to the
// default when the item is unregistered, the key is absent, or decoding
// fails.
func (it *Item[T]) Value() T {
	if it.st == nil {
		return it.def
	}
	return Get(it.st, it.key, it.def)
}

// SetValue writes value through the store. When the item declares a rule the
// candidate is validated first and a rejection is returned without touching
// the store. Pass save=false to defer persistence.
func (it *Item[T]) SetValue(value T, save ...bool) error {
	if it.st == nil {
		return fmt.Errorf("%w: %s", ErrNotRegistered, it.key)
	}
	if err := it.st.checkRule(it.key, it.rule, value); err != nil {
		return err
	}
	Set(it.st, it.key, value, save...)
	return nil
}

// StringValue returns the stored string form of the value, or the default's
// string form when nothing is stored.
func (it *Item[T]) StringValue() string {
	if it.st != nil {
		if raw, ok := it.st.raw(it.key); ok {
			return raw
		}
	}
	encoded, err := Encode(it.def)
	if err != nil {
		return ""
	}
	return encoded
}

// Display renders the value for human consumption, masking it when the item
// is secret.
func (it *Item[T]) Display() string {
	if it.secret {
		return secretMask
	}
	return it.StringValue()
}

// Toggle negates the current boolean value. It fails with a
// *TypeMismatchError when the item's declared type is not bool.
func (it *Item[T]) Toggle() error {
	def, ok := any(it.def).(bool)
	if !ok {
		return &TypeMismatchError{
			Key:      it.key,
			Expected: "bool",
			Actual:   it.TypeName(),
		}
	}
	if it.st == nil {
		return fmt.Errorf("%w: %s", ErrNotRegistered, it.key)
	}
	current := Get(it.st, it.key, def)
	Set(it.st, it.key, !current)
	return nil
}

func (it *Item[T]) bind(s *Store)        { it.st = s }
func (it *Item[T]) setGroup(g *Group)    { it.group = g }
func (it *Item[T]) resetRequested() bool { return it.reset }
