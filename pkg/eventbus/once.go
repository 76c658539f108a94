package eventbus

import (
	"context"
	"fmt"
	"reflect"
)

// onceResult is the memoized outcome of a once-variant call.
type onceResult struct {
	value any
	err   error
}

// CallOnce runs Call at most once per (topic, signal).
// Later calls return the memoized error without running handlers.
func (b *Bus) CallOnce(ctx context.Context, e Event) error {
	_, err := b.doOnce(ctx, e, "call", false)
	return err
}

// GetOnce runs Get at most once per (topic, signal) and returns the memoized result afterwards.
func (b *Bus) GetOnce(ctx context.Context, e Event) (any, error) {
	return b.doOnce(ctx, e, "get", true)
}

// ResetOnce forgets memoized outcomes for the topic, for every signal.
func (b *Bus) ResetOnce(topic string) {
	b.onceMu.Lock()
	defer b.onceMu.Unlock()
	for key := range b.once {
		if hasTopic(key, topic) {
			delete(b.once, key)
		}
	}
}

// ResetAllOnce forgets every memoized outcome.
func (b *Bus) ResetAllOnce() {
	b.onceMu.Lock()
	defer b.onceMu.Unlock()
	clear(b.once)
}

func (b *Bus) doOnce(ctx context.Context, e Event, mode string, first bool) (any, error) {
	key := onceKey(mode, e.Topic, e.Signal)

	if res, ok := b.cached(key); ok {
		return res.value, res.err
	}

	v, _, _ := b.flight.Do(key, func() (any, error) {
		// A caller that lost the race may arrive after the winner stored the result.
		if res, ok := b.cached(key); ok {
			return res, nil
		}

		val, err := b.fire(ctx, e, first)
		res := onceResult{value: val, err: err}

		b.onceMu.Lock()
		b.once[key] = res
		b.onceMu.Unlock()

		return res, nil
	})

	res := v.(onceResult)
	return res.value, res.err
}

func (b *Bus) cached(key string) (onceResult, bool) {
	b.onceMu.Lock()
	defer b.onceMu.Unlock()
	res, ok := b.once[key]
	return res, ok
}

// onceKey builds the memoization key. The topic is kept as a distinct segment
// so ResetOnce can match it exactly.
func onceKey(mode, topic string, signal any) string {
	if signal == nil {
		return mode + "\x00" + topic + "\x00"
	}
	t := reflect.TypeOf(signal)
	return fmt.Sprintf("%s\x00%s\x00%s:%#v", mode, topic, t.String(), signal)
}

func hasTopic(key, topic string) bool {
	for _, mode := range [...]string{"call", "get"} {
		prefix := mode + "\x00" + topic + "\x00"
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
