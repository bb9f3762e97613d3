package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
)

// RecordingPublisher collects published tick events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []game.TickEvent
}

// PublishTick implements game.TickPublisher
func (p *RecordingPublisher) PublishTick(ctx context.Context, event game.TickEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns the published events in order
func (p *RecordingPublisher) Events() []game.TickEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]game.TickEvent(nil), p.events...)
}
