// Package eventbus provides a priority-ordered, signal-filtered hook registry.
//
// Handlers register under a named topic. When a topic is fired, every matching
// handler runs in ascending priority order (lower runs earlier); handlers with
// equal priority run in registration order.
//
// # Firing Modes
//
//   - [Bus.Call] runs every matching handler and discards results.
//   - [Bus.Get] stops at the first handler returning a non-nil result.
//   - [Bus.CallOnce] and [Bus.GetOnce] memoize the outcome per (topic, signal)
//     so handlers run at most once until [Bus.ResetOnce] is called.
//
// # Signals
//
// A registration may opt into a subset of calls with [WithSignal]. A registration
// without signals matches every call to its topic; a registration with signals
// matches only events whose Signal equals one of them:
//
//	bus := eventbus.New(eventbus.WithLogger(log))
//
//	bus.Register("prepare_view_env", addUser, eventbus.WithPriority(eventbus.PriorityHigh))
//	bus.Register("prepare_view_env", addAdminMenu, eventbus.WithSignal("admin"))
//
//	// Runs addUser only.
//	err := bus.Call(ctx, eventbus.Event{Sender: app, Topic: "prepare_view_env"})
//
//	// Runs addUser, then addAdminMenu.
//	err = bus.Call(ctx, eventbus.Event{Sender: app, Topic: "prepare_view_env", Signal: "admin"})
//
// # Errors
//
// A handler error is logged with topic, handler and signal and returned as a
// [*HandlerError], aborting the remaining handlers of that call. A handler panic
// is logged with its stack and re-panicked.
//
// # Once Semantics
//
// Once-variants are safe for concurrent use: concurrent first callers for the
// same (topic, signal) share a single evaluation and its outcome, including a
// returned error.
package eventbus
