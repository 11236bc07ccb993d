package production

import (
	"context"

	"github.com/comalice/osalx/internal/primitives"
)

// ChannelPublisher is a stdlib-only implementation that forwards transition
// events to a Go channel. Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch chan<- primitives.TransitionEvent
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- primitives.TransitionEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event primitives.TransitionEvent) error {
	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // Non-blocking drop
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
