package hook

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Outcome is the result of one hook for one dispatched event.
type Outcome struct {
	Hook     string
	Response *Response
	Err      error
}

// Dispatcher delivers events to every subscribed hook.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
}

// NewDispatcher creates a Dispatcher over discovered hooks.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{manager: manager, executor: executor}
}

// SessionFinished sends the session to every hook subscribed to
// EventSessionFinished, in name order. It returns the points credited by the
// successful hooks and the joined errors of the failed ones.
func (d *Dispatcher) SessionFinished(ctx context.Context, info SessionInfo) (int, []Outcome, error) {
	hooks := d.manager.ForEvent(EventSessionFinished)
	outcomes := make([]Outcome, 0, len(hooks))

	credited := 0
	var errs []error
	for _, h := range hooks {
		req := &Request{
			Event:   EventSessionFinished,
			Session: info,
			Config:  h.Manifest.Config,
		}

		resp, err := d.executor.Run(ctx, h, req)
		outcomes = append(outcomes, Outcome{Hook: h.Manifest.Name, Response: resp, Err: err})
		if err != nil {
			log.Printf("[HOOK] %s failed for session %s: %v", h.Manifest.Name, info.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", h.Manifest.Name, err))
			continue
		}
		credited += resp.Credited
	}

	return credited, outcomes, errors.Join(errs...)
}
