// Package journal persists ledger entries in a pebble store. Entries are
// keyed by a zero-padded append sequence so iteration order is append order.
package journal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"auction-system/internal/models"
)

const keyPrefix = "entry/"

// Pebble is a durable append-only ledger entry log.
type Pebble struct {
	mu  sync.Mutex
	db  *pebble.DB
	seq uint64
}

// Open opens (or creates) the journal in dir and positions the append
// sequence after the last stored entry.
func Open(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	j := &Pebble{db: db}

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: iterator: %w", err)
	}
	defer iter.Close()
	if iter.Last() && iter.Valid() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return nil, err
		}
		j.seq = seq
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("journal: scan: %w", err)
	}
	return j, nil
}

// Close closes the underlying store.
func (j *Pebble) Close() error {
	return j.db.Close()
}

// Append durably writes one entry at the next sequence position.
func (j *Pebble) Append(e models.LedgerEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: encode entry %s: %w", e.EntryID, err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	return j.db.Set(keyFor(j.seq), data, pebble.Sync)
}

// Replay iterates all stored entries in append order.
func (j *Pebble) Replay(fn func(models.LedgerEntry) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return fmt.Errorf("journal: iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var e models.LedgerEntry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return fmt.Errorf("journal: decode %s: %w", iter.Key(), err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(key []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(key[len(keyPrefix):]), "%d", &seq); err != nil {
		return 0, fmt.Errorf("journal: malformed key %q: %w", key, err)
	}
	return seq, nil
}
