// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

type task[T any] struct {
	idx  int
	item T
}

// Map runs a worker pool over the provided items and collects one result per
// item, preserving input order. The first error cancels outstanding work and
// is returned.
func Map[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) (R, error),
) ([]R, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if workerCount < 1 {
		workerCount = 1
	}

	results := make([]R, len(items))
	tasks := make(chan task[T], workerCount)
	errs := make(chan error, workerCount)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case tsk, ok := <-tasks:
					if !ok {
						return
					}
					res, err := process(ctx, tsk.item)
					if err != nil {
						select {
						case errs <- err:
						default:
						}
						cancel()
						return
					}
					results[tsk.idx] = res
				}
			}
		}()
	}

	go func() {
		for i, item := range items {
			select {
			case <-ctx.Done():
				close(tasks)
				return
			case tasks <- task[T]{idx: i, item: item}:
			}
		}
		close(tasks)
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
