package generator

import (
	"testing"

	"dataSynth/src/metadata"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (Registry, *metadata.Allocator) {
	t.Helper()
	alloc := metadata.NewAllocator(SupportedTables)
	return NewRegistry(alloc), alloc
}

func TestRegistryLookup(t *testing.T) {
	registry, _ := newTestRegistry(t)

	for _, name := range SupportedTables {
		gen, err := registry.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, gen.Table())
	}

	_, err := registry.Lookup("invoices")
	assert.Equal(t, metadata.ErrUnknownTable, errors.Cause(err))
}

func TestGenerateUsersCommitsIDs(t *testing.T) {
	registry, alloc := newTestRegistry(t)
	gen, err := registry.Lookup("users")
	require.NoError(t, err)

	tbl, err := gen.Generate(50)
	require.NoError(t, err)
	assert.Equal(t, 50, tbl.NumRows())
	assert.Equal(t, "users", tbl.Name)

	// First column is the assigned ID range.
	assert.Equal(t, "user_id", tbl.Columns[0].Name)
	assert.Equal(t, int64(1), tbl.Columns[0].Int64s[0])
	assert.Equal(t, int64(50), tbl.Columns[0].Int64s[49])

	count, err := alloc.ExistingCount("users")
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)

	// A second run keeps extending the sequence.
	tbl, err = gen.Generate(10)
	require.NoError(t, err)
	assert.Equal(t, int64(51), tbl.Columns[0].Int64s[0])
	assert.Equal(t, int64(60), tbl.Columns[0].Int64s[9])
}

func TestGenerateProducts(t *testing.T) {
	registry, alloc := newTestRegistry(t)
	gen, err := registry.Lookup("products")
	require.NoError(t, err)

	tbl, err := gen.Generate(30)
	require.NoError(t, err)
	assert.Equal(t, 30, tbl.NumRows())

	count, err := alloc.ExistingCount("products")
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}

func TestGenerateOrdersRequiresDependencies(t *testing.T) {
	registry, alloc := newTestRegistry(t)
	orders, err := registry.Lookup("orders")
	require.NoError(t, err)

	// No users at all.
	_, err = orders.Generate(5)
	assert.Equal(t, metadata.ErrNoExistingIDs, errors.Cause(err))

	// Users without products is still not enough.
	require.NoError(t, alloc.Commit("users", []int64{1, 2, 3}))
	_, err = orders.Generate(5)
	assert.Equal(t, metadata.ErrNoExistingIDs, errors.Cause(err))

	// Nothing may have been allocated for orders by the failed attempts.
	count, err := alloc.ExistingCount("orders")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGenerateOrdersForeignKeys(t *testing.T) {
	registry, alloc := newTestRegistry(t)

	users, err := registry.Lookup("users")
	require.NoError(t, err)
	_, err = users.Generate(20)
	require.NoError(t, err)

	products, err := registry.Lookup("products")
	require.NoError(t, err)
	_, err = products.Generate(10)
	require.NoError(t, err)

	orders, err := registry.Lookup("orders")
	require.NoError(t, err)
	tbl, err := orders.Generate(100)
	require.NoError(t, err)
	assert.Equal(t, 100, tbl.NumRows())

	userCount, err := alloc.ExistingCount("users")
	require.NoError(t, err)

	var userIDs []int64
	for _, col := range tbl.Columns {
		if col.Name == "user_id" {
			userIDs = col.Int64s
		}
	}
	require.Len(t, userIDs, 100)
	for _, id := range userIDs {
		assert.GreaterOrEqual(t, id, int64(1))
		assert.LessOrEqual(t, id, userCount)
	}
}

func TestOrderItemsCappedByCatalog(t *testing.T) {
	registry, alloc := newTestRegistry(t)
	require.NoError(t, alloc.Commit("users", []int64{1, 2, 3}))
	require.NoError(t, alloc.Commit("products", []int64{1}))

	orders, err := registry.Lookup("orders")
	require.NoError(t, err)
	tbl, err := orders.Generate(40)
	require.NoError(t, err)

	for _, col := range tbl.Columns {
		if col.Name != "total_items" {
			continue
		}
		for i, n := range col.Int32s {
			assert.Equal(t, int32(1), n, "row %d", i)
		}
	}
}

func TestOrderTotalsAddUp(t *testing.T) {
	registry, _ := newTestRegistry(t)

	users, _ := registry.Lookup("users")
	_, err := users.Generate(5)
	require.NoError(t, err)
	products, _ := registry.Lookup("products")
	_, err = products.Generate(5)
	require.NoError(t, err)

	orders, _ := registry.Lookup("orders")
	tbl, err := orders.Generate(50)
	require.NoError(t, err)

	cols := map[string][]float64{}
	for _, col := range tbl.Columns {
		switch col.Name {
		case "subtotal_amount", "tax_amount", "shipping_cost", "discount_amount", "total_amount":
			cols[col.Name] = col.Float64s
		}
	}
	require.Len(t, cols, 5)

	for i := range tbl.NumRows() {
		want := cols["subtotal_amount"][i] + cols["tax_amount"][i] +
			cols["shipping_cost"][i] - cols["discount_amount"][i]
		assert.InDelta(t, want, cols["total_amount"][i], 0.011)
	}
}
