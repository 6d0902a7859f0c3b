// Package clustercache persists cluster/template decisions (internal/cluster)
// across compiler invocations, so a later run can take a cluster's hole
// list and parameter mapping from the cache instead of recomputing the
// mapping; the clusters themselves are still built on every run. It is
// keyed by structural signature and
// stores the hole-path list and parameter mapping a previous run
// computed. Per §4.11, a cold or corrupted cache is never an error: every
// failure here degrades to "nothing cached", and the compiler simply
// recomputes clusters as if the cache were empty.
package clustercache

import (
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/typeforge/tfc/internal/cluster"
)

// Entry is what gets persisted for one signature: the hole paths (as
// recorded the first time that signature was clustered) and the
// parameter mapping computed from them, plus an id that Put assigns when
// the entry has none. The id is stored and returned but not used to name
// the generated template functions.
type Entry struct {
	ID      string
	Holes   []cluster.Path
	Mapping []int
}

// Cache wraps a *sql.DB backed by a single sqlite file. All methods are
// safe for concurrent use; Get/Put never return an error for
// cache-internal failures (missing table, corrupt row, closed db) — they
// log nothing and simply behave as a miss, matching the "never blocks a
// compile" requirement.
type Cache struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// ensures its schema exists. A failure to open or migrate the file is
// reported so the caller can choose to run without a cache (e.g. log a
// warning and pass a nil *Cache — Get/Put are nil-receiver safe).
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS cluster_cache (
	signature TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	holes     TEXT NOT NULL,
	mapping   TEXT NOT NULL
)`)
	return err
}

// Close releases the underlying database handle. Safe to call on a nil
// *Cache.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get looks up a previously stored Entry for signature. The bool result
// is false whenever there is nothing usable to return, whether because
// there was no row, the cache has not been opened, or the stored JSON no
// longer parses (e.g. written by an older schema version).
func (c *Cache) Get(signature string) (Entry, bool) {
	if c == nil || c.db == nil {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var id, holesJSON, mappingJSON string
	row := c.db.QueryRow(`SELECT id, holes, mapping FROM cluster_cache WHERE signature = ?`, signature)
	if err := row.Scan(&id, &holesJSON, &mappingJSON); err != nil {
		return Entry{}, false
	}
	var holes []cluster.Path
	if err := json.Unmarshal([]byte(holesJSON), &holes); err != nil {
		return Entry{}, false
	}
	var mapping []int
	if err := json.Unmarshal([]byte(mappingJSON), &mapping); err != nil {
		return Entry{}, false
	}
	return Entry{ID: id, Holes: holes, Mapping: mapping}, true
}

// Put stores (or replaces) the Entry for signature, assigning a fresh id
// via uuid if entry.ID is empty. Errors are swallowed: a cache write is
// an optimization, and a corrupt/readonly cache file must never fail a
// compile that would otherwise have succeeded.
func (c *Cache) Put(signature string, entry Entry) {
	if c == nil || c.db == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	holesJSON, err := json.Marshal(entry.Holes)
	if err != nil {
		return
	}
	mappingJSON, err := json.Marshal(entry.Mapping)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.db.Exec(
		`INSERT INTO cluster_cache (signature, id, holes, mapping) VALUES (?, ?, ?, ?)
		 ON CONFLICT(signature) DO UPDATE SET id = excluded.id, holes = excluded.holes, mapping = excluded.mapping`,
		signature, entry.ID, string(holesJSON), string(mappingJSON),
	)
}
