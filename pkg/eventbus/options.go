package eventbus

import "log/slog"

// Default priorities. Lower values run earlier.
const (
	PriorityHigh   = 100
	PriorityMiddle = 500
	PriorityLow    = 900
)

// Option configures the Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDefaultPriority sets the priority used when a registration does not
// specify one. Defaults to PriorityMiddle.
func WithDefaultPriority(p int) Option {
	return func(b *Bus) {
		b.defaultPriority = p
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*Registration)

// WithPriority sets an explicit priority for the registration.
func WithPriority(p int) RegisterOption {
	return func(r *Registration) {
		r.priority = p
		r.hasPriority = true
	}
}

// WithSignal restricts the registration to events carrying one of the given signals.
// Signal values must be comparable.
func WithSignal(signals ...any) RegisterOption {
	return func(r *Registration) {
		r.signals = append(r.signals, signals...)
	}
}

// WithName sets the handler name used in logs and diagnostics.
// Defaults to the handler's function symbol.
func WithName(name string) RegisterOption {
	return func(r *Registration) {
		if name != "" {
			r.name = name
		}
	}
}
