package server

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Broadcaster fans messages from one source out to every subscriber.
type Broadcaster[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Listeners() int
	Close()
}

type broadcaster[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	timeout        time.Duration
	kind           func(T) string

	numListeners atomic.Int64
	numRcv       int
	numSnd       int
	numSkip      int
	last         map[string]T
	kinds        []string
}

// Option configures a broadcaster.
type Option[T any] func(*broadcaster[T])

// WithTimeout sets how long a slow listener may block a message before
// it is skipped for that listener.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(b *broadcaster[T]) { b.timeout = d }
}

// WithReplay keeps the latest message of each kind, as named by kind, and
// sends them to new subscribers in the order the kinds first appeared.
func WithReplay[T any](kind func(T) string) Option[T] {
	return func(b *broadcaster[T]) {
		b.kind = kind
		b.last = make(map[string]T)
	}
}

// NewBroadcaster starts a broadcaster reading from source. It stops when
// Close is called.
func NewBroadcaster[T any](name string, source <-chan T, opts ...Option[T]) Broadcaster[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcaster[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		timeout:        50 * time.Millisecond,
	}
	for _, o := range opts {
		o(b)
	}
	go b.serve()
	return b
}

func (b *broadcaster[T]) Subscribe() <-chan T {
	ch := make(chan T, 8)
	select {
	case b.addListener <- ch:
	case <-b.ctx.Done():
		close(ch)
	}
	return ch
}

func (b *broadcaster[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.ctx.Done():
	}
}

func (b *broadcaster[T]) Listeners() int {
	return int(b.numListeners.Load())
}

func (b *broadcaster[T]) Close() {
	b.cancel()
}

func (b *broadcaster[T]) serve() {
	defer func() {
		slog.Info("closing broadcaster",
			"name", b.name, "rcv", b.numRcv, "snd", b.numSnd, "skip", b.numSkip)
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListeners.Store(0)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			for _, k := range b.kinds {
				select {
				case ch <- b.last[k]:
				default:
				}
			}
			b.listeners = append(b.listeners, ch)
			b.numListeners.Store(int64(len(b.listeners)))
		case ch := <-b.removeListener:
			for i, listener := range b.listeners {
				if listener == ch {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					close(listener)
					break
				}
			}
			b.numListeners.Store(int64(len(b.listeners)))
			slog.Debug("removed listener", "name", b.name, "len", len(b.listeners))
		case msg, ok := <-b.source:
			if !ok {
				return
			}
			b.numRcv++
			if b.kind != nil {
				k := b.kind(msg)
				if _, seen := b.last[k]; !seen {
					b.kinds = append(b.kinds, k)
				}
				b.last[k] = msg
			}
			for _, listener := range b.listeners {
				select {
				case listener <- msg:
					b.numSnd++
				case <-time.After(b.timeout):
					b.numSkip++
				}
			}
		}
	}
}
