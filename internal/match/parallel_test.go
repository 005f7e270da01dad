package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicelab/splicematch/internal/refdb"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		ch <- WorkItem{
			Seq:   i,
			Event: testEvent(fmt.Sprintf("chr1:%d:%d:+:SE", 100+i, 200+i), "G1"),
		}
	}
	close(ch)
	return ch
}

func TestParallelMatch_OrderPreservation(t *testing.T) {
	m := NewMatcher(refdb.New(), 5)

	items := makeItems(200)
	results := m.ParallelMatch(items, 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelMatch_SingleWorker(t *testing.T) {
	m := NewMatcher(refdb.New(), 5)

	items := makeItems(50)
	results := m.ParallelMatch(items, 1)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 50)
	for i, seq := range collected {
		assert.Equal(t, i, seq)
	}
}

func TestParallelMatch_EmptyInput(t *testing.T) {
	m := NewMatcher(refdb.New(), 5)

	ch := make(chan WorkItem)
	close(ch)
	results := m.ParallelMatch(ch, 4)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	m := NewMatcher(refdb.New(), 5)

	items := makeItems(100)
	results := m.ParallelMatch(items, 4)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}

func TestParallelMatch_FindsCandidates(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_A", "G1", "chr1", 100, 200, "+", "SE"))

	m := NewMatcher(db, 5)

	items := makeItems(5)
	results := m.ParallelMatch(items, 2)

	found := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		found += len(r.Candidates)
		return nil
	})
	require.NoError(t, err)

	// Events at offsets 0..5 from the reference; offsets 0..5 within tolerance.
	assert.Equal(t, 5, found)
}
