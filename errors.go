package settings

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned when a descriptor is used for value access
// before it has been registered with a store.
var ErrNotRegistered = errors.New("settings: item not registered with a store")

// ErrRuleViolation is returned when a validation rule rejects a candidate
// value.
var ErrRuleViolation = errors.New("settings: rule violation")

// DecodeError reports a stored string that does not parse as the requested
// type. Callers recover by falling back to a default value.
type DecodeError struct {
	Key    string
	Raw    string
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: decode %q as %s: %v", e.Key, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DuplicateItemError reports a second descriptor declared under a key that
// already exists within a group. This is a declaration bug, not a runtime
// condition.
type DuplicateItemError struct {
	Group string
	Key   string
}

func (e *DuplicateItemError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: duplicate item %q in group %q", e.Key, e.Group)
}

// NotFoundError reports a must-exist lookup for a key the group does not
// contain.
type NotFoundError struct {
	Group string
	Key   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: item %q not found in group %q", e.Key, e.Group)
}

// TypeMismatchError reports an operation that is invalid for the item's
// declared type, such as toggling a non-boolean item.
type TypeMismatchError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: item %q expects %s, declared as %s", e.Key, e.Expected, e.Actual)
}
