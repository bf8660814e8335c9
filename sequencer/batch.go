package sequencer

import (
	"context"
	"errors"
	"fmt"

	"go-songcode/composer"
	"go-songcode/debug"
	"go-songcode/queue"
)

// QueueResult records one rendered queue item
type QueueResult struct {
	Code int
	Path string
	Err  error
}

// RenderQueue exports every code in items, one after another, on a worker
// goroutine. Output names come from pattern (see queue.OutputName) next to
// base. A failing item is reported and skipped; onDone, if set, receives
// the results when the worker exits.
func (s *Session) RenderQueue(ctx context.Context, items []int, base, pattern string, opts composer.Options, onDone func([]QueueResult)) error {
	if len(items) == 0 {
		return fmt.Errorf("queue is empty")
	}

	// Resolve every name up front so a bad pattern fails before any work
	paths := make([]string, len(items))
	for i, code := range items {
		p, err := queue.OutputName(pattern, base, i, code)
		if err != nil {
			return err
		}
		paths[i] = p
	}

	ctx, done, err := s.begin(ctx, nil)
	if err != nil {
		return err
	}

	go func() {
		results := s.renderQueue(ctx, items, paths, opts)
		var errs []error
		for _, r := range results {
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
		s.finish(done, errors.Join(errs...))
		if onDone != nil {
			onDone(results)
		}
	}()
	return nil
}

func (s *Session) renderQueue(ctx context.Context, items []int, paths []string, opts composer.Options) []QueueResult {
	var results []QueueResult
	for i, code := range items {
		if ctx.Err() != nil {
			s.notify(fmt.Sprintf("Queue stopped after %d of %d", i, len(items)))
			return results
		}

		plan := s.Compose(code, opts)
		s.mu.Lock()
		s.plan = plan
		s.mu.Unlock()

		s.progress.begin(plan.Code, fmt.Sprintf("queue %d/%d", i+1, len(items)), 0)
		s.notify(fmt.Sprintf("Rendering %d/%d: %s", i+1, len(items), composer.Digits(code)))

		err := s.export(paths[i], plan)
		if err != nil {
			debug.Log("session", "queue item %d (%d): %v", i, code, err)
			s.notify(Issue(err))
		}
		results = append(results, QueueResult{Code: code, Path: paths[i], Err: err})
	}
	s.notify(fmt.Sprintf("Queue finished: %d files", countOK(results)))
	return results
}

func countOK(results []QueueResult) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
