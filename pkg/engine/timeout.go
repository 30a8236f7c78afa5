package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/castorlab/castor/pkg/graph"
)

// DefaultEvalTimeout is the evaluation budget used when the engine is not
// given an explicit one.
const DefaultEvalTimeout = 5 * time.Second

// evalResult is the internal type used to pass evaluation results through
// channels.
type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// once the budget elapses. It uses a generation counter to discard stale
// results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		// Check if this result is still relevant (not stale).
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			// A newer evaluation was started; discard this result.
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}

		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
