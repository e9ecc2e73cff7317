package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-settings/pkg/notify"
)

func newMemoryStore(t *testing.T, opts ...Option) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	store := New(append([]Option{WithBackend(backend)}, opts...)...)
	if err := store.Configure("", ""); err != nil {
		t.Fatalf("configure: %v", err)
	}
	return store, backend
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newMemoryStore(t)

	Set(store, "app.retries", 3)
	if got := Get(store, "app.retries", 0); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}

	Set(store, "app.name", "demo")
	if got := Get(store, "app.name", ""); got != "demo" {
		t.Fatalf("expected demo, got %q", got)
	}

	Set(store, "app.debug", true)
	if got := Get(store, "app.debug", false); !got {
		t.Fatalf("expected true")
	}

	Set(store, "app.limits", map[string]int{"rps": 10})
	if got := Get(store, "app.limits", map[string]int{}); got["rps"] != 10 {
		t.Fatalf("unexpected map: %v", got)
	}
}

func TestGetAbsentKeyReturnsDefault(t *testing.T) {
	store, _ := newMemoryStore(t)
	if got := Get(store, "missing", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
}

func TestSetIdenticalValueIsNoOp(t *testing.T) {
	capture := &notify.CaptureHook{}
	store, backend := newMemoryStore(t, WithHooks(notify.Hooks{capture}))

	Set(store, "app.retries", 3)
	savesAfterFirst := backend.SaveCount()
	eventsAfterFirst := len(capture.Captured())

	Set(store, "app.retries", 3)
	if backend.SaveCount() != savesAfterFirst {
		t.Fatalf("expected no save for identical value, got %d saves", backend.SaveCount())
	}
	if len(capture.Captured()) != eventsAfterFirst {
		t.Fatalf("expected no event for identical value")
	}
}

func TestSetChangedValueSavesAndNotifies(t *testing.T) {
	capture := &notify.CaptureHook{}
	store, backend := newMemoryStore(t, WithHooks(notify.Hooks{capture}))

	Set(store, "app.retries", 3)
	Set(store, "app.retries", 5)

	if backend.SaveCount() != 2 {
		t.Fatalf("expected 2 saves, got %d", backend.SaveCount())
	}
	events := capture.Captured()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, event := range events {
		if event.Key != "app.retries" || event.Action != notify.ActionSet {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.ID == "" {
			t.Fatalf("expected event ID assigned")
		}
	}
	if got := Get(store, "app.retries", 0); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestSetDeferredSave(t *testing.T) {
	store, backend := newMemoryStore(t)

	Set(store, "app.retries", 3, false)
	if backend.SaveCount() != 0 {
		t.Fatalf("expected no save with save=false, got %d", backend.SaveCount())
	}
	if got := Get(store, "app.retries", 0); got != 3 {
		t.Fatalf("expected in-memory value 3, got %d", got)
	}

	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if backend.SaveCount() != 1 {
		t.Fatalf("expected 1 save, got %d", backend.SaveCount())
	}
}

func TestUnset(t *testing.T) {
	capture := &notify.CaptureHook{}
	store, backend := newMemoryStore(t, WithHooks(notify.Hooks{capture}))

	Set(store, "app.retries", 3)
	store.Unset("app.retries")

	if got := Get(store, "app.retries", 9); got != 9 {
		t.Fatalf("expected default after unset, got %d", got)
	}

	events := capture.Captured()
	if len(events) != 2 || events[1].Action != notify.ActionUnset {
		t.Fatalf("expected unset event, got %+v", events)
	}

	savesBefore := backend.SaveCount()
	store.Unset("app.retries")
	if backend.SaveCount() != savesBefore {
		t.Fatalf("expected unset of absent key to be a no-op")
	}
	if len(capture.Captured()) != 2 {
		t.Fatalf("expected no event for absent key")
	}
}

func TestSaveEmptyStoreIsNoOp(t *testing.T) {
	store, backend := newMemoryStore(t)
	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if backend.SaveCount() != 0 {
		t.Fatalf("expected no backend save for empty map")
	}
}

type failingBackend struct {
	err error
}

func (b *failingBackend) Load() (map[string]string, error) { return map[string]string{}, nil }
func (b *failingBackend) Save(map[string]string) error     { return b.err }

func TestSaveFailureIsNonFatal(t *testing.T) {
	errDisk := errors.New("disk full")
	store := New(WithBackend(&failingBackend{err: errDisk}))
	if err := store.Configure("", ""); err != nil {
		t.Fatalf("configure: %v", err)
	}

	Set(store, "app.retries", 3)
	if got := Get(store, "app.retries", 0); got != 3 {
		t.Fatalf("expected in-memory state preserved, got %d", got)
	}

	if err := store.Save(); !errors.Is(err, errDisk) {
		t.Fatalf("expected save error surfaced, got %v", err)
	}
}

func TestDecodeFailureReturnsDefault(t *testing.T) {
	store, _ := newMemoryStore(t)

	Set(store, "app.opts", "definitely not json")
	got := Get(store, "app.opts", map[string]any{"fallback": true})
	if got["fallback"] != true {
		t.Fatalf("expected default on decode failure, got %v", got)
	}
}

func TestConfigureIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := New()
	if err := store.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	first := store.Path()

	if err := store.Configure(t.TempDir(), "other.json"); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if store.Path() != first {
		t.Fatalf("expected path unchanged, got %q", store.Path())
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := New()
	if err := store.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	Set(store, "app.retries", 3)
	Set(store, "app.name", "demo")
	Set(store, "app.tags", []string{"a", "b"})

	fresh := New()
	if err := fresh.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("configure fresh: %v", err)
	}
	if got := Get(fresh, "app.retries", 0); got != 3 {
		t.Fatalf("expected 3 after reload, got %d", got)
	}
	if got := Get(fresh, "app.name", ""); got != "demo" {
		t.Fatalf("expected demo after reload, got %q", got)
	}
	tags := Get(fresh, "app.tags", []string{})
	if len(tags) != 2 || tags[0] != "a" {
		t.Fatalf("expected tags after reload, got %v", tags)
	}
}

func TestPersistedDocumentIsDoubleEncoded(t *testing.T) {
	dir := t.TempDir()
	store := New()
	if err := store.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	Set(store, "app.retries", 3)
	Set(store, "app.name", "demo")

	data, err := os.ReadFile(filepath.Join(dir, "properties.json"))
	if err != nil {
		t.Fatalf("read persisted file: %v", err)
	}

	// Top-level values are opaque strings; non-string values carry their own
	// nested JSON encoding.
	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("expected flat string map on disk: %v", err)
	}
	if doc["app.retries"] != "3" {
		t.Fatalf("expected nested encoding %q, got %q", "3", doc["app.retries"])
	}
	if doc["app.name"] != "demo" {
		t.Fatalf("expected raw string %q, got %q", "demo", doc["app.name"])
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := New()
	if err := store.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	Set(store, "app.retries", 3)

	if _, err := os.Stat(filepath.Join(dir, "properties.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed after save, stat err=%v", err)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "properties.json")
	if err := os.WriteFile(path, []byte("{ not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := New()
	if err := store.Configure(dir, "properties.json"); err != nil {
		t.Fatalf("expected load failure to be non-fatal, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after corrupt load, got %d keys", store.Len())
	}
}

func TestRegisterAndLookup(t *testing.T) {
	store, _ := newMemoryStore(t)

	item := NewItem("Retries", "app.retries", 3)
	store.Register(item)

	generic, ok := store.Lookup("app.retries")
	if !ok {
		t.Fatalf("expected registered item found")
	}
	if generic.Key() != "app.retries" {
		t.Fatalf("unexpected item: %v", generic.Key())
	}

	typed, ok := ItemOf[int](store, "app.retries")
	if !ok || typed != item {
		t.Fatalf("expected typed lookup to return the registered item")
	}

	if _, ok := ItemOf[string](store, "app.retries"); ok {
		t.Fatalf("expected wrong-type lookup to fail")
	}
	if _, ok := store.Lookup("missing"); ok {
		t.Fatalf("expected missing lookup to fail")
	}
}

func TestEventCarriesRegisteredItem(t *testing.T) {
	capture := &notify.CaptureHook{}
	store, _ := newMemoryStore(t, WithHooks(notify.Hooks{capture}))

	item := NewItem("Retries", "app.retries", 3)
	store.Register(item)
	Set(store, "app.retries", 5)

	events := capture.Captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Item != AnyItem(item) {
		t.Fatalf("expected event to reference the registered item")
	}

	Set(store, "other.key", 1)
	events = capture.Captured()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Item != nil {
		t.Fatalf("expected nil item for undeclared key")
	}
}

func TestKeysSortedAndLen(t *testing.T) {
	store, _ := newMemoryStore(t)
	Set(store, "b", 2)
	Set(store, "a", 1)
	Set(store, "c", 3)

	keys := store.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
	if store.Len() != 3 {
		t.Fatalf("expected len 3, got %d", store.Len())
	}
	if !store.Has("b") || store.Has("z") {
		t.Fatalf("unexpected Has results")
	}
}

func TestChangeOnlyScenario(t *testing.T) {
	capture := &notify.CaptureHook{}
	store, backend := newMemoryStore(t, WithHooks(notify.Hooks{capture}))

	Set(store, "retries", 3)
	if got := Get(store, "retries", 0); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if backend.SaveCount() != 1 || len(capture.Captured()) != 1 {
		t.Fatalf("expected one save and one event")
	}

	Set(store, "retries", 3)
	if backend.SaveCount() != 1 {
		t.Fatalf("expected no additional save")
	}

	Set(store, "retries", 5)
	if backend.SaveCount() != 2 || len(capture.Captured()) != 2 {
		t.Fatalf("expected second save and event")
	}
	if got := Get(store, "retries", 0); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	store, _ := newMemoryStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Set(store, "counter", n*100+j, false)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = Get(store, "counter", 0)
				_ = store.Keys()
			}
		}()
	}
	wg.Wait()

	if !store.Has("counter") {
		t.Fatalf("expected counter to be present")
	}
}

func TestCloseFlushes(t *testing.T) {
	store, backend := newMemoryStore(t)
	Set(store, "app.retries", 3, false)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if backend.SaveCount() != 1 {
		t.Fatalf("expected close to flush, got %d saves", backend.SaveCount())
	}
}
