package web

import (
	"sync"

	"tempctl/internal/sim"
)

// Broadcaster fans out panel snapshots to any listeners (the websocket
// stream, telemetry). It keeps the most recent value so new subscribers get
// an immediate sample.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan sim.Snapshot
	nextID   int
	last     sim.Snapshot
	haveLast bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan sim.Snapshot)}
}

// Publish delivers snap to every subscriber. Slow subscribers drop samples
// rather than blocking the publisher. The sends happen under the lock so a
// concurrent Unsubscribe cannot close a channel mid-send.
func (b *Broadcaster) Publish(snap sim.Snapshot) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = snap
	b.haveLast = true
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (b *Broadcaster) Subscribe(buffer int) (int, <-chan sim.Snapshot) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan sim.Snapshot, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}
