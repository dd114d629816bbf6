package metadata

import (
	"iter"
	"math/rand"
	"time"

	"github.com/pingcap/errors"
)

var (
	// ErrUnknownTable is returned when an operation names a table that was
	// never registered with the allocator.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoExistingIDs is returned when a sample is requested for a table
	// that has no committed rows yet.
	ErrNoExistingIDs = errors.New("no existing ids")
)

// Range is a contiguous ID interval [Start, Start+Count).
type Range struct {
	Start int64
	Count int
}

// IDs materializes the range as a slice.
func (r Range) IDs() []int64 {
	ids := make([]int64, r.Count)
	for i := range r.Count {
		ids[i] = r.Start + int64(i)
	}
	return ids
}

// Allocator tracks the last assigned sequential ID per table across
// generation runs. IDs are assigned as a gapless run starting at 1, so the
// last ID fully determines the set of existing IDs; the allocator stores
// nothing else. All generators share one allocator handle, which is what
// keeps foreign keys valid between independent runs.
type Allocator struct {
	lastIDs map[string]int64
	rng     *rand.Rand
}

// NewAllocator creates an in-memory allocator for a fixed table set, every
// table starting at last_id = 0.
func NewAllocator(tables []string) *Allocator {
	lastIDs := make(map[string]int64, len(tables))
	for _, table := range tables {
		lastIDs[table] = 0
	}
	return &Allocator{
		lastIDs: lastIDs,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *Allocator) lastID(table string) (int64, error) {
	last, ok := a.lastIDs[table]
	if !ok {
		return 0, errors.Annotatef(ErrUnknownTable, "table %q", table)
	}
	return last, nil
}

// AllocateRange returns the next count sequential IDs for a table. It does
// not change any state; the caller confirms consumption with Commit once the
// rows are actually produced.
func (a *Allocator) AllocateRange(table string, count int) (Range, error) {
	if count < 0 {
		return Range{}, errors.Errorf("negative allocation count %d for table %q", count, table)
	}
	last, err := a.lastID(table)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: last + 1, Count: count}, nil
}

// Commit records generated IDs by advancing last_id to their maximum. The
// max guard makes it idempotent: repeated or out-of-order commits can never
// move last_id backward. An empty commit is a no-op.
func (a *Allocator) Commit(table string, ids []int64) error {
	if _, err := a.lastID(table); err != nil {
		return err
	}
	for _, id := range ids {
		if id > a.lastIDs[table] {
			a.lastIDs[table] = id
		}
	}
	return nil
}

// ExistingCount returns the number of rows known to exist for a table,
// which by construction equals last_id.
func (a *Allocator) ExistingCount(table string) (int64, error) {
	return a.lastID(table)
}

// SampleExisting draws a uniformly random existing ID, with replacement.
// Each draw is independent, matching the semantics of picking a random
// foreign-key target.
func (a *Allocator) SampleExisting(table string) (int64, error) {
	last, err := a.lastID(table)
	if err != nil {
		return 0, err
	}
	if last == 0 {
		return 0, errors.Annotatef(ErrNoExistingIDs, "table %q", table)
	}
	return a.rng.Int63n(last) + 1, nil
}

// AllExistingIDs returns a restartable sequence over every existing ID,
// 1..last_id. Iterating it materializes nothing, but collecting it does;
// prefer SampleExisting for single draws on large tables.
func (a *Allocator) AllExistingIDs(table string) (iter.Seq[int64], error) {
	last, err := a.lastID(table)
	if err != nil {
		return nil, err
	}
	return func(yield func(int64) bool) {
		for id := int64(1); id <= last; id++ {
			if !yield(id) {
				return
			}
		}
	}, nil
}

// Tables returns the registered table names.
func (a *Allocator) Tables() []string {
	tables := make([]string, 0, len(a.lastIDs))
	for table := range a.lastIDs {
		tables = append(tables, table)
	}
	return tables
}
