package settings

import (
	"errors"
	"strings"
	"testing"
)

func TestGroupAddItemRejectsDuplicateKey(t *testing.T) {
	group := NewGroup("General")

	first := NewItem("Retries", "app.retries", 3)
	if err := group.AddItem(first); err != nil {
		t.Fatalf("add: %v", err)
	}

	second := NewItem("Retries again", "app.retries", 5)
	err := group.AddItem(second)
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
	var dup *DuplicateItemError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateItemError, got %T", err)
	}
	if dup.Group != "General" || dup.Key != "app.retries" {
		t.Fatalf("unexpected error payload: %+v", dup)
	}

	// First descriptor stays retrievable.
	got, lookupErr := group.Item("app.retries")
	if lookupErr != nil {
		t.Fatalf("lookup: %v", lookupErr)
	}
	if got != AnyItem(first) {
		t.Fatalf("expected first item preserved")
	}
}

func TestGroupItemNotFound(t *testing.T) {
	group := NewGroup("General")

	_, err := group.Item("missing.key")
	if err == nil {
		t.Fatalf("expected error")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing.key") || !strings.Contains(msg, "General") {
		t.Fatalf("expected message to name group and key, got %q", msg)
	}

	if item := group.ItemOrNil("missing.key"); item != nil {
		t.Fatalf("expected nil from ItemOrNil, got %v", item)
	}
}

func TestGroupItemsPreserveDeclarationOrder(t *testing.T) {
	group := NewGroup("General")
	keys := []string{"z.last", "a.first", "m.middle"}
	for _, key := range keys {
		if err := group.AddItem(NewItem(key, key, "")); err != nil {
			t.Fatalf("add %s: %v", key, err)
		}
	}

	items := group.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, key := range keys {
		if items[i].Key() != key {
			t.Fatalf("expected %q at position %d, got %q", key, i, items[i].Key())
		}
	}
}

func TestGroupBackReference(t *testing.T) {
	group := NewGroup("General")
	item := NewItem("Retries", "app.retries", 3)
	if err := group.AddItem(item); err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Group() != group {
		t.Fatalf("expected owning group back-reference")
	}
}

func TestDescribe(t *testing.T) {
	store, _ := newMemoryStore(t)
	group := NewGroup("General")

	retries := NewItem("Retries", "app.retries", 3,
		WithDescription("number of retry attempts"))
	token := NewItem("API token", "auth.token", "", AsSecret())
	for _, item := range []AnyItem{retries, token} {
		if err := group.AddItem(item); err != nil {
			t.Fatalf("add: %v", err)
		}
		store.Register(item)
	}
	if err := retries.SetValue(5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := token.SetValue("s3cret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	descriptors := Describe(group)
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}

	first := descriptors[0]
	if first.Group != "General" || first.Key != "app.retries" || first.Type != "int" {
		t.Fatalf("unexpected descriptor: %+v", first)
	}
	if first.Value != "5" {
		t.Fatalf("expected rendered value, got %q", first.Value)
	}
	if first.Description != "number of retry attempts" {
		t.Fatalf("expected description, got %q", first.Description)
	}

	second := descriptors[1]
	if !second.Secret || second.Value != secretMask {
		t.Fatalf("expected masked secret descriptor: %+v", second)
	}
}

func TestDescribeNilAndEmpty(t *testing.T) {
	if got := Describe(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := Describe(NewGroup("Empty")); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
