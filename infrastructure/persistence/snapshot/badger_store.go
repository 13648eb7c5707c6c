// Package snapshot persists the flattened store image in an embedded badger
// database across lifecycle boundaries. Keys are zero-padded identifiers
// under per-entity prefixes, so badger's lexicographic iteration yields the
// records back in insertion order.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"conceptbase/application/ports"
	pkgerrors "conceptbase/pkg/errors"
)

const (
	prefixConcept      = "concept/"
	prefixRelationship = "relationship/"
	prefixType         = "type/"
	keyCounters        = "counters"
)

// Store is a badger-backed snapshot store.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) the badger database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, pkgerrors.NewSystemError(fmt.Sprintf("open snapshot database at %s", path), err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens an in-memory badger database. For tests.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, pkgerrors.NewSystemError("open in-memory snapshot database", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save replaces the persisted image with the given state. The previous image
// is dropped first so a shrinking store never leaves stale records behind.
func (s *Store) Save(ctx context.Context, state *ports.SnapshotState) error {
	if err := s.db.DropAll(); err != nil {
		return pkgerrors.NewSystemError("clear previous snapshot", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, rec := range state.Concepts {
		if err := writeRecord(wb, fmt.Sprintf("%s%016x", prefixConcept, rec.ID), rec); err != nil {
			return err
		}
	}
	for _, rec := range state.Relationships {
		if err := writeRecord(wb, fmt.Sprintf("%s%016x", prefixRelationship, rec.ID), rec); err != nil {
			return err
		}
	}
	for _, rec := range state.Types {
		if err := writeRecord(wb, fmt.Sprintf("%s%016x", prefixType, rec.ID), rec); err != nil {
			return err
		}
	}
	if err := writeRecord(wb, keyCounters, state.Counters); err != nil {
		return err
	}
	if err := wb.Flush(); err != nil {
		return pkgerrors.NewSystemError("flush snapshot", err)
	}

	s.logger.Info("snapshot saved",
		zap.Int("concepts", len(state.Concepts)),
		zap.Int("relationships", len(state.Relationships)),
		zap.Int("types", len(state.Types)),
	)
	return nil
}

// Load reads the persisted image. An empty database yields an empty state, so
// first startup and restored startup follow the same path.
func (s *Store) Load(ctx context.Context) (*ports.SnapshotState, error) {
	state := &ports.SnapshotState{}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := readPrefix(txn, prefixConcept, func(value []byte) error {
			var rec ports.ConceptRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			state.Concepts = append(state.Concepts, rec)
			return nil
		}); err != nil {
			return err
		}
		if err := readPrefix(txn, prefixRelationship, func(value []byte) error {
			var rec ports.RelationshipRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			state.Relationships = append(state.Relationships, rec)
			return nil
		}); err != nil {
			return err
		}
		if err := readPrefix(txn, prefixType, func(value []byte) error {
			var rec ports.TypeRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			state.Types = append(state.Types, rec)
			return nil
		}); err != nil {
			return err
		}

		item, err := txn.Get([]byte(keyCounters))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &state.Counters)
		})
	})
	if err != nil {
		return nil, pkgerrors.NewSystemError("load snapshot", err)
	}
	return state, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return pkgerrors.NewSystemError("close snapshot database", err)
	}
	return nil
}

func writeRecord(wb *badger.WriteBatch, key string, record interface{}) error {
	value, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.NewSystemError(fmt.Sprintf("encode snapshot record %s", key), err)
	}
	if err := wb.Set([]byte(key), value); err != nil {
		return pkgerrors.NewSystemError(fmt.Sprintf("write snapshot record %s", key), err)
	}
	return nil
}

func readPrefix(txn *badger.Txn, prefix string, apply func(value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		if err := it.Item().Value(apply); err != nil {
			return err
		}
	}
	return nil
}
