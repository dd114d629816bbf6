package metadata

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTables = []string{"users", "products", "orders"}

func TestAllocateRangeSequencing(t *testing.T) {
	alloc := NewAllocator(testTables)

	r1, err := alloc.AllocateRange("users", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, r1.IDs())

	require.NoError(t, alloc.Commit("users", r1.IDs()))

	count, err := alloc.ExistingCount("users")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	r2, err := alloc.AllocateRange("users", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 7, 8}, r2.IDs())
}

func TestAllocateRangeIsPure(t *testing.T) {
	alloc := NewAllocator(testTables)

	// Without a commit, repeated allocations return the same range.
	r1, err := alloc.AllocateRange("users", 10)
	require.NoError(t, err)
	r2, err := alloc.AllocateRange("users", 10)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestCommitIdempotent(t *testing.T) {
	alloc := NewAllocator(testTables)

	ids := []int64{1, 2, 3, 4, 5}
	require.NoError(t, alloc.Commit("users", ids))
	require.NoError(t, alloc.Commit("users", ids))
	require.NoError(t, alloc.Commit("users", ids[:2]))
	require.NoError(t, alloc.Commit("users", nil))

	count, err := alloc.ExistingCount("users")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestUnknownTable(t *testing.T) {
	alloc := NewAllocator(testTables)

	_, err := alloc.AllocateRange("invoices", 1)
	assert.Equal(t, ErrUnknownTable, errors.Cause(err))

	err = alloc.Commit("invoices", []int64{1})
	assert.Equal(t, ErrUnknownTable, errors.Cause(err))

	_, err = alloc.ExistingCount("invoices")
	assert.Equal(t, ErrUnknownTable, errors.Cause(err))

	_, err = alloc.SampleExisting("invoices")
	assert.Equal(t, ErrUnknownTable, errors.Cause(err))

	_, err = alloc.AllExistingIDs("invoices")
	assert.Equal(t, ErrUnknownTable, errors.Cause(err))
}

func TestSampleExisting(t *testing.T) {
	alloc := NewAllocator(testTables)

	_, err := alloc.SampleExisting("products")
	assert.Equal(t, ErrNoExistingIDs, errors.Cause(err))

	require.NoError(t, alloc.Commit("products", []int64{1, 2, 3}))
	for range 100 {
		id, err := alloc.SampleExisting("products")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, id, int64(1))
		assert.LessOrEqual(t, id, int64(3))
	}
}

func TestAllExistingIDsRestartable(t *testing.T) {
	alloc := NewAllocator(testTables)
	require.NoError(t, alloc.Commit("users", []int64{1, 2, 3, 4}))

	seq, err := alloc.AllExistingIDs("users")
	require.NoError(t, err)

	// The sequence can be iterated more than once.
	for range 2 {
		var ids []int64
		for id := range seq {
			ids = append(ids, id)
		}
		assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	}

	// Empty table yields an empty but valid sequence.
	seq, err = alloc.AllExistingIDs("orders")
	require.NoError(t, err)
	for range seq {
		t.Fatal("expected no ids for an empty table")
	}
}

func TestNegativeAllocation(t *testing.T) {
	alloc := NewAllocator(testTables)
	_, err := alloc.AllocateRange("users", -1)
	assert.Error(t, err)
}
