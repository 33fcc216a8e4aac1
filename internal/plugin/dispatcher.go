package plugin

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Dispatcher forwards appended letters to the configured sink plugins.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	sinks    []string

	wg sync.WaitGroup

	mu      sync.Mutex
	lastErr map[string]error
}

// NewDispatcher creates a Dispatcher delivering to the named sinks. Sinks are
// resolved through manager on every delivery so a rediscovery is picked up.
func NewDispatcher(manager *Manager, executor *Executor, sinks []string) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		sinks:    append([]string(nil), sinks...),
		lastErr:  make(map[string]error),
	}
}

// Sinks returns the configured sink names.
func (d *Dispatcher) Sinks() []string {
	return append([]string(nil), d.sinks...)
}

// Dispatch sends letter and the resulting word to every sink without blocking
// the caller. Failures are logged and kept for LastError.
func (d *Dispatcher) Dispatch(letter, word string) {
	req := Request{Action: ActionType, Letter: letter, Word: word}
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(sink string) {
			defer d.wg.Done()
			err := d.Deliver(context.Background(), sink, &req)
			if err != nil {
				log.Printf("plugin: sink %s: %v", sink, err)
			}
			d.mu.Lock()
			d.lastErr[sink] = err
			d.mu.Unlock()
		}(sink)
	}
}

// Deliver runs one sink synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, sink string, req *Request) error {
	p, err := d.manager.Get(sink)
	if err != nil {
		return err
	}
	if !p.Supports(req.Action) {
		return fmt.Errorf("%s does not support action %q", sink, req.Action)
	}

	resp, err := d.executor.Execute(ctx, p, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s failed: %s", sink, resp.Error)
	}
	return nil
}

// LastError returns the outcome of the most recent delivery to sink.
func (d *Dispatcher) LastError(sink string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr[sink]
}

// Wait blocks until all pending deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
