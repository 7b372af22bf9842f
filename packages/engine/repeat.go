package engine

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RepeatOptions configure repeated execution of a single request.
type RepeatOptions struct {
	// Count is the total number of executions. Values below 1 mean one.
	Count int
	// Rate caps executions per second. Zero means no pacing beyond the
	// sequential dispatch itself.
	Rate float64
}

// ExecuteRepeat runs one request Count times sequentially, pacing dispatches
// with a rate limiter when Rate is set. Each outcome passes through the
// hooks, so history records every run. Cancelling the context returns the
// results gathered so far along with the context error.
func (e *Engine) ExecuteRepeat(ctx context.Context, requestID string, opts ExecuteOptions, rep RepeatOptions) ([]*Result, error) {
	count := rep.Count
	if count < 1 {
		count = 1
	}

	var limiter *rate.Limiter
	if rep.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(rep.Rate), 1)
	}

	all, err := e.store.GetAll()
	if err != nil {
		return nil, err
	}
	collectionID, col := findRequest(all, requestID)
	if col == nil {
		return nil, fmt.Errorf("request %s not found in any collection", requestID)
	}

	results := make([]*Result, 0, count)
	for i := 0; i < count; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return results, err
			}
		}

		result, err := e.execute(ctx, all, collectionID, col, requestID, opts)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}
