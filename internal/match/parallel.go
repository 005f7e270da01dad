package match

import (
	"runtime"
	"sync"

	"github.com/splicelab/splicematch/internal/event"
)

// WorkItem holds a catalog event ready for matching.
type WorkItem struct {
	Seq   int
	Event *event.SplicingEvent
}

// WorkResult holds the candidate set for a single event.
type WorkResult struct {
	Seq        int
	Event      *event.SplicingEvent
	Candidates []Candidate
}

// ParallelMatch matches work items using a pool of workers. Inputs are
// read-only, so workers share no mutable state. Results are sent to the
// returned channel in arrival order (not sequence order); use
// OrderedCollect to consume them in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (m *Matcher) ParallelMatch(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{
					Seq:        item.Seq,
					Event:      item.Event,
					Candidates: m.Match(item.Event),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
