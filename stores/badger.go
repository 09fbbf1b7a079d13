package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"lightingboq/engine"
)

// BadgerWorkingSets persists working sets as JSON values in badger, one key
// per scope. Keys are "ws/<project>/<area>/<sub_area>".
type BadgerWorkingSets struct {
	db *badger.DB
}

// OpenBadgerWorkingSets opens (or creates) a badger database at path. An
// empty path opens an in-memory database.
func OpenBadgerWorkingSets(path string) (*BadgerWorkingSets, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerWorkingSets{db: db}, nil
}

func (b *BadgerWorkingSets) Close() error {
	return b.db.Close()
}

func projectPrefix(projectID string) []byte {
	return []byte("ws/" + projectID + "/")
}

func workingSetKey(scope engine.ScopeKey) []byte {
	return append(projectPrefix(scope.ProjectID), []byte(scope.AreaID+"/"+scope.SubAreaID)...)
}

func (b *BadgerWorkingSets) LoadWorkingSet(ctx context.Context, scope engine.ScopeKey) (engine.WorkingSet, error) {
	if err := ctx.Err(); err != nil {
		return engine.WorkingSet{}, err
	}
	ws := engine.NewWorkingSet(scope)
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(workingSetKey(scope))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ws)
		})
	})
	if err != nil {
		return engine.WorkingSet{}, fmt.Errorf("load working set %s: %w", scope, err)
	}
	return ws, nil
}

func (b *BadgerWorkingSets) SaveWorkingSet(ctx context.Context, ws engine.WorkingSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("encode working set %s: %w", ws.Scope, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(workingSetKey(ws.Scope), val)
	})
	if err != nil {
		return fmt.Errorf("save working set %s: %w", ws.Scope, err)
	}
	return nil
}

// ListWorkingSets returns the project's working sets in key order.
func (b *BadgerWorkingSets) ListWorkingSets(ctx context.Context, projectID string) ([]engine.WorkingSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []engine.WorkingSet{}
	prefix := projectPrefix(projectID)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ws engine.WorkingSet
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ws)
			}); err != nil {
				return err
			}
			out = append(out, ws)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list working sets of project %s: %w", projectID, err)
	}
	return out, nil
}
