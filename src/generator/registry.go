package generator

import (
	"math/rand"
	"time"

	"dataSynth/src/metadata"
	"dataSynth/src/table"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pingcap/errors"
)

// SupportedTables lists every table a registry can generate, in dependency
// order: orders reference users and products.
var SupportedTables = []string{"users", "products", "orders"}

// Generator produces rows for one table.
type Generator interface {
	Table() string
	Generate(rows int) (*table.Table, error)
}

// Registry maps table names to generators. Lookup is the only dispatch
// point: unknown names are rejected here instead of being probed at
// runtime.
type Registry map[string]Generator

// NewRegistry builds generators for every supported table. All generators
// share the one allocator handle, which is what keeps foreign keys valid
// across tables and runs.
func NewRegistry(alloc *metadata.Allocator) Registry {
	reg := Registry{}
	for _, gen := range []Generator{
		newUserGenerator(alloc),
		newProductGenerator(alloc),
		newOrderGenerator(alloc),
	} {
		reg[gen.Table()] = gen
	}
	return reg
}

// Tables returns the registered table names.
func (r Registry) Tables() []string {
	tables := make([]string, 0, len(r))
	for name := range r {
		tables = append(tables, name)
	}
	return tables
}

// Lookup resolves a table name to its generator.
func (r Registry) Lookup(name string) (Generator, error) {
	gen, ok := r[name]
	if !ok {
		return nil, errors.Annotatef(metadata.ErrUnknownTable, "table %q", name)
	}
	return gen, nil
}

// base carries the shared pieces of every table generator.
type base struct {
	alloc *metadata.Allocator
	faker *gofakeit.Faker
	rng   *rand.Rand
}

func newBase(alloc *metadata.Allocator) base {
	seed := time.Now().UnixNano()
	return base{
		alloc: alloc,
		faker: gofakeit.New(uint64(seed)),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// choose picks one option by weight. Weights need not sum to anything in
// particular.
func (b base) choose(options []string, weights []float32) string {
	anyOptions := make([]any, len(options))
	for i, o := range options {
		anyOptions[i] = o
	}
	v, err := b.faker.Weighted(anyOptions, weights)
	if err != nil {
		return options[0]
	}
	return v.(string)
}

// chance returns true with probability p.
func (b base) chance(p float64) bool {
	return b.rng.Float64() < p
}

// timeBetween returns a uniformly random UTC time in [from, to].
func (b base) timeBetween(from, to time.Time) time.Time {
	if !to.After(from) {
		return from.UTC()
	}
	d := time.Duration(b.rng.Int63n(int64(to.Sub(from))))
	return from.Add(d).UTC()
}

// price returns a two-decimal amount in [lo, hi].
func (b base) price(lo, hi float64) float64 {
	return b.faker.Price(lo, hi)
}
