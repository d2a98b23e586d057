package core

import (
	"context"
	"fmt"
	"reflect"
)

// sequence coerces a batch node's prep result into a []any. A nil prep result
// is an empty batch; anything that is not a slice or array is a configuration
// error reported before any item runs.
func sequence(prepResult any) ([]any, error) {
	if prepResult == nil {
		return nil, nil
	}
	if items, ok := prepResult.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(prepResult)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: got %T", ErrNotSequence, prepResult)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// runBatch executes ExecItem over the prepared sequence strictly in order,
// each item independently protected by the node's retry policy. The first
// item whose retries and fallback are exhausted aborts the batch; later items
// are never attempted. Per-item results are computed and discarded: batch
// nodes report through the shared context only.
func (n *Node) runBatch(ctx context.Context, prepResult any) error {
	items, err := sequence(prepResult)
	if err != nil {
		return &PhaseError{Node: n.name, Phase: PhaseExecItem, Err: err}
	}
	for i, item := range items {
		if _, err := n.execItem(ctx, item); err != nil {
			n.log.Error(n.name, "batch aborted",
				"item", i, "total", len(items), "error", err)
			return err
		}
	}
	return nil
}

// runParallelBatch launches every item's protected execution together and
// joins fail-fast: the first observed item failure fails the whole batch.
// Already-launched siblings are not canceled; they run to completion in the
// background and their outcomes go unobserved.
func (n *Node) runParallelBatch(ctx context.Context, prepResult any) error {
	items, err := sequence(prepResult)
	if err != nil {
		return &PhaseError{Node: n.name, Phase: PhaseExecItem, Err: err}
	}
	if len(items) == 0 {
		return nil
	}

	errs := make(chan error, len(items))
	for _, item := range items {
		go func(item any) {
			_, err := n.execItem(ctx, item)
			errs <- err
		}(item)
	}
	for range items {
		if err := <-errs; err != nil {
			n.log.Error(n.name, "parallel batch failed", "total", len(items), "error", err)
			return err
		}
	}
	return nil
}

// execItem runs one item under the node's retry policy.
func (n *Node) execItem(ctx context.Context, item any) (any, error) {
	return n.retry.run(ctx, n.log, n.name, PhaseExecItem, item, n.items.ExecItem)
}
