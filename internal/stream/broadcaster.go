// Package stream fans the mixed composition audio out to preview
// listeners: chunked MP3 over HTTP for simple scrubbing, Opus over WebRTC
// for low-latency monitoring.
package stream

import (
	"context"
	"sync"
)

// listenerBuffer is ~3 seconds of 20ms frames; enough slack for HTTP
// clients without letting a dead one hoard memory.
const listenerBuffer = 150

// Broadcaster fans out mixed PCM frames from the engine to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	C    chan []int16 // buffered channel of 20ms PCM frames
	done chan struct{}
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// NewBroadcaster creates a broadcaster with no listeners.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new preview listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan []int16, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Idempotent.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, present := b.listeners[l]
	delete(b.listeners, l)
	b.mu.Unlock()
	if present {
		close(l.done)
	}
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Run reads mixed frames from the engine and fans them out. Slow listeners
// get frames dropped rather than stalling the preview for everyone else.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					// listener too slow, drop frame to keep the preview live
				}
			}
			b.mu.RUnlock()
		}
	}
}
