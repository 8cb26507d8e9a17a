package tasks

import (
	"context"
	"log"
	"time"

	"github.com/juju/clock"
)

// Poller runs one pass, waits for the interval, and repeats until the context
// is cancelled. Passes never overlap.
type Poller struct {
	Clock    clock.Clock
	Interval time.Duration
	Pass     func(ctx context.Context) error
}

func (p *Poller) Run(ctx context.Context) error {
	clk := p.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	for {
		if err := p.Pass(ctx); err != nil {
			log.Printf("poll pass failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(p.Interval):
		}
	}
}
