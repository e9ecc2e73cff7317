// Package settings provides a thread-safe key/value configuration store with
// typed access, atomic disk persistence, and change notification.
//
// Callers declare configuration items (typed, with defaults, optional
// secrecy) grouped for display, and read/write them through a generic typed
// API backed by a single Store. Values are serialized into a flat
// string-keyed map: strings verbatim, everything else as its JSON encoding.
// The persisted file is a single JSON document written atomically (temp file
// plus rename), saved only when a mutation actually changed a value.
//
// Basic usage:
//
//	store := settings.New(settings.WithLogger(logger))
//	if err := store.Configure("", ""); err != nil {
//		log.Fatal(err)
//	}
//
//	general := settings.NewGroup("General")
//	retries := settings.NewItem("Retries", "app.retries", 3)
//	if err := general.AddItem(retries); err != nil {
//		log.Fatal(err)
//	}
//	store.Register(retries)
//
//	retries.SetValue(5)
//	n := retries.Value() // 5
//
// Items can declare validation rules evaluated by an embeddable expression
// engine (expr by default, CEL optional, JavaScript behind the js_eval build
// tag):
//
//	timeout := settings.NewItem("Timeout", "app.timeout", 30,
//		settings.WithRule("value > 0 && value <= 300"))
//
// Change notifications fan out to hooks registered via WithHooks; see the
// pkg/notify package.
package settings
