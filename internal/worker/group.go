package worker

import (
	"context"
	"sync"
)

// Runner is a background job that blocks until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context)
}

// Group manages the lifecycle of the background jobs a command starts.
type Group struct {
	runners []Runner
	wg      sync.WaitGroup
}

func NewGroup(runners ...Runner) *Group {
	return &Group{runners: runners}
}

// Start launches every runner as a goroutine.
// Cancelling ctx triggers a graceful shutdown of the whole group.
func (g *Group) Start(ctx context.Context) {
	for _, r := range g.runners {
		g.wg.Add(1)
		go func(r Runner) {
			defer g.wg.Done()
			r.Run(ctx)
		}(r)
	}
}

// Wait blocks until every runner has returned after ctx is cancelled.
func (g *Group) Wait() {
	g.wg.Wait()
}
