package settings

import "sync"

// Group is a named, insertion-ordered collection of item descriptors. It
// enforces key uniqueness within itself, independently of the store-wide
// registry. Groups exist for declaration and display; value access always
// goes through the store.
type Group struct {
	name string

	mu    sync.RWMutex
	order []string
	items map[string]AnyItem
}

// NewGroup constructs an empty group.
func NewGroup(name string) *Group {
	return &Group{
		name:  name,
		items: map[string]AnyItem{},
	}
}

// Name returns the group's display name.
func (g *Group) Name() string { return g.name }

// AddItem appends item in declaration order. A second item under an existing
// key fails with a *DuplicateItemError; the first item stays in place.
func (g *Group) AddItem(item AnyItem) error {
	if item == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	key := item.Key()
	if _, exists := g.items[key]; exists {
		return &DuplicateItemError{Group: g.name, Key: key}
	}
	g.items[key] = item
	g.order = append(g.order, key)
	item.setGroup(g)
	return nil
}

// Item returns the descriptor for key, failing with a *NotFoundError naming
// both the group and the key when absent.
func (g *Group) Item(key string) (AnyItem, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	item, ok := g.items[key]
	if !ok {
		return nil, &NotFoundError{Group: g.name, Key: key}
	}
	return item, nil
}

// ItemOrNil returns the descriptor for key, or nil when absent. It never
// fails.
func (g *Group) ItemOrNil(key string) AnyItem {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.items[key]
}

// Items returns the descriptors in declaration order.
func (g *Group) Items() []AnyItem {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AnyItem, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.items[key])
	}
	return out
}

// Len returns the number of items in the group.
func (g *Group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}
