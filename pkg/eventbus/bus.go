package eventbus

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/relay/pkg/logger"
)

// Event describes a single firing of a topic.
type Event struct {
	// Sender is the component firing the topic (usually the application).
	Sender any

	// Signal filters which registrations receive the event.
	// A nil signal reaches only registrations without signals.
	Signal any

	// Topic names the extension point.
	Topic string

	// Args are positional handler arguments.
	Args []any
}

// Arg returns the i-th positional argument or nil if out of range.
func (e Event) Arg(i int) any {
	if i < 0 || i >= len(e.Args) {
		return nil
	}
	return e.Args[i]
}

// HandlerFunc handles a fired topic.
// A non-nil result is meaningful only for Get and GetOnce.
type HandlerFunc func(ctx context.Context, e Event) (any, error)

// Registration is a handler bound to a topic.
type Registration struct {
	handler     HandlerFunc
	name        string
	signals     []any
	priority    int
	hasPriority bool
}

// Name returns the handler name.
func (r *Registration) Name() string { return r.name }

// Priority returns the resolved priority.
func (r *Registration) Priority() int { return r.priority }

// Signals returns a copy of the registration's signal filter.
func (r *Registration) Signals() []any { return slices.Clone(r.signals) }

// accepts reports whether the registration matches the given call signal.
func (r *Registration) accepts(signal any) bool {
	if len(r.signals) == 0 {
		return true
	}
	if signal == nil {
		return false
	}
	for _, s := range r.signals {
		if sameSignal(s, signal) {
			return true
		}
	}
	return false
}

// Bus is a topic registry. Registrations are normally made during startup;
// firing topics is safe for concurrent use.
type Bus struct {
	logger          *slog.Logger
	topics          map[string][]*Registration
	once            map[string]onceResult
	flight          singleflight.Group
	defaultPriority int
	mu              sync.RWMutex
	onceMu          sync.Mutex
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger:          logger.NewNope(),
		topics:          make(map[string][]*Registration),
		once:            make(map[string]onceResult),
		defaultPriority: PriorityMiddle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register binds a handler to a topic and returns the registration handle,
// which can later be passed to Unregister.
// Panics if topic is empty or handler is nil; use TryRegister to get an error instead.
func (b *Bus) Register(topic string, h HandlerFunc, opts ...RegisterOption) *Registration {
	reg, err := b.TryRegister(topic, h, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// TryRegister is like Register but returns an error for invalid input.
func (b *Bus) TryRegister(topic string, h HandlerFunc, opts ...RegisterOption) (*Registration, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	reg := &Registration{handler: h, name: funcName(h)}
	for _, opt := range opts {
		opt(reg)
	}
	if !reg.hasPriority {
		reg.priority = b.defaultPriority
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	regs := append(b.topics[topic], reg)
	// Stable: equal priorities keep registration order.
	slices.SortStableFunc(regs, func(x, y *Registration) int {
		return x.priority - y.priority
	})
	b.topics[topic] = regs

	return reg, nil
}

// Unregister removes the given registration from a topic.
// Returns false if it was not bound to that topic.
func (b *Bus) Unregister(topic string, reg *Registration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.topics[topic]
	for i, r := range regs {
		if r == reg {
			b.topics[topic] = slices.Delete(slices.Clone(regs), i, i+1)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			return true
		}
	}
	return false
}

// Has reports whether any handler is registered for the topic.
func (b *Bus) Has(topic string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic]) > 0
}

// Topics returns the registered topic names, sorted.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.topics))
	for name := range b.topics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Registrations returns a snapshot of the topic's registrations in execution order.
func (b *Bus) Registrations(topic string) []*Registration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.topics[topic])
}

// Call runs every registration matching the event, in priority order.
// The first handler error aborts the call and is returned as a *HandlerError.
func (b *Bus) Call(ctx context.Context, e Event) error {
	_, err := b.fire(ctx, e, false)
	return err
}

// Get runs matching registrations in priority order and returns the first
// non-nil result. Returns nil, nil if no handler produced a result.
func (b *Bus) Get(ctx context.Context, e Event) (any, error) {
	return b.fire(ctx, e, true)
}

func (b *Bus) fire(ctx context.Context, e Event, first bool) (any, error) {
	if e.Topic == "" {
		return nil, ErrEmptyTopic
	}

	// Snapshot so handlers may (un)register without deadlocking.
	regs := b.Registrations(e.Topic)

	for _, reg := range regs {
		if !reg.accepts(e.Signal) {
			continue
		}

		res, err := b.invoke(ctx, reg, e)
		if err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				slog.String("topic", e.Topic),
				slog.String("handler", reg.name),
				slog.Int("priority", reg.priority),
				slog.Any("signal", e.Signal),
				slog.Any("error", err),
			)
			return nil, &HandlerError{
				Topic:    e.Topic,
				Handler:  reg.name,
				Priority: reg.priority,
				Signal:   e.Signal,
				Err:      err,
			}
		}

		if first && res != nil {
			return res, nil
		}
	}

	return nil, nil
}

// invoke runs a single handler. Panics are logged and re-panicked.
func (b *Bus) invoke(ctx context.Context, reg *Registration, e Event) (any, error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event handler panicked",
				slog.String("topic", e.Topic),
				slog.String("handler", reg.name),
				slog.Any("signal", e.Signal),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			panic(r)
		}
	}()
	return reg.handler(ctx, e)
}

// sameSignal compares two signal values without panicking on non-comparable types.
func sameSignal(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// funcName returns a short symbol name for a function value.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
