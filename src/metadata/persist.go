package metadata

import (
	"context"
	"encoding/json"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"
)

// persistedTable is the on-disk shape of one table entry. ExistingIDs only
// appears in documents written before the last-id optimization; current
// writes never include it.
type persistedTable struct {
	LastID      int64   `json:"last_id"`
	ExistingIDs []int64 `json:"existing_ids,omitempty"`
}

// migration upgrades one persisted entry to the current shape. Migrations
// run in order on load, so future format changes compose instead of turning
// into special-cased field checks.
type migration func(*persistedTable)

var migrations = []migration{
	migrateExistingIDList,
}

// migrateExistingIDList collapses the legacy explicit ID list into last_id.
// Sequential gapless allocation means max(existing_ids) carries the same
// information as the whole list.
func migrateExistingIDList(t *persistedTable) {
	for _, id := range t.ExistingIDs {
		if id > t.LastID {
			t.LastID = id
		}
	}
	t.ExistingIDs = nil
}

// Load restores an allocator from a JSON document in the given store. A
// missing document initializes every registered table to last_id = 0.
// Tables present in the document but not registered are a contract
// violation and fail the load.
func Load(ctx context.Context, store storage.ExternalStorage, name string, tables []string) (*Allocator, error) {
	alloc := NewAllocator(tables)

	exists, err := store.FileExists(ctx, name)
	if err != nil {
		return nil, errors.Annotatef(err, "checking metadata %q", name)
	}
	if !exists {
		return alloc, nil
	}

	data, err := store.ReadFile(ctx, name)
	if err != nil {
		return nil, errors.Annotatef(err, "reading metadata %q", name)
	}

	persisted := make(map[string]*persistedTable)
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, errors.Annotatef(err, "parsing metadata %q", name)
	}

	for table, entry := range persisted {
		if _, ok := alloc.lastIDs[table]; !ok {
			return nil, errors.Annotatef(ErrUnknownTable, "persisted table %q", table)
		}
		if entry == nil {
			return nil, errors.Errorf("metadata %q: null entry for table %q", name, table)
		}
		for _, migrate := range migrations {
			migrate(entry)
		}
		alloc.lastIDs[table] = entry.LastID
	}

	return alloc, nil
}

// Persist writes the last_id map as a JSON document. Only last_id values are
// stored, keeping the document O(tables) no matter how many rows were ever
// generated.
func (a *Allocator) Persist(ctx context.Context, store storage.ExternalStorage, name string) error {
	persisted := make(map[string]*persistedTable, len(a.lastIDs))
	for table, lastID := range a.lastIDs {
		persisted[table] = &persistedTable{LastID: lastID}
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}

	return errors.Annotatef(store.WriteFile(ctx, name, data), "writing metadata %q", name)
}
