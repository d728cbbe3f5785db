// Package cache stores synthesized reach sets in BadgerDB, keyed by the
// instance digest and every parameter that affects the result.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

const keyPrefix = "reach/v1/"

// Config holds configuration for a cache.
type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps the database in RAM. Useful for tests.
	InMemory bool
	// Logger receives BadgerDB's internal messages. Nil silences them.
	Logger *slog.Logger
}

// Key identifies one reach set.
type Key struct {
	Digest       string
	Budget       core.Budget
	Mode         string
	GoalBlocking bool
}

func (k Key) bytes() []byte {
	return fmt.Appendf(nil, "%s%s/%s/%d/%s/%t", keyPrefix, k.Digest, k.Budget.Objective, k.Budget.Value, k.Mode, k.GoalBlocking)
}

// Cache is a persistent reach set store. It is safe for concurrent use.
type Cache struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the cache.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache directory is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open reach cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

type record struct {
	Objective string      `json:"objective"`
	Value     int         `json:"value"`
	Entries   [][2]string `json:"entries"`
	Times     []int       `json:"times"`
}

// Get returns the cached set for k. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, k Key) (*core.ReachSet, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var rec record
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k.bytes())
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read reach cache: %w", err)
	}
	if len(rec.Entries) != len(rec.Times) {
		return nil, false, fmt.Errorf("read reach cache: corrupt record for %s", k.Digest)
	}

	entries := make([]core.Entry, len(rec.Entries))
	for i, e := range rec.Entries {
		entries[i] = core.Entry{Agent: core.AgentID(e[0]), Node: core.Node(e[1]), Time: rec.Times[i]}
	}
	// Entries were stored sorted.
	return &core.ReachSet{Budget: k.Budget, Entries: entries}, true, nil
}

// Put stores rs under k.
func (c *Cache) Put(ctx context.Context, k Key, rs *core.ReachSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := record{
		Objective: rs.Budget.Objective.String(),
		Value:     rs.Budget.Value,
		Entries:   make([][2]string, len(rs.Entries)),
		Times:     make([]int, len(rs.Entries)),
	}
	for i, e := range rs.Entries {
		rec.Entries[i] = [2]string{string(e.Agent), string(e.Node)}
		rec.Times[i] = e.Time
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode reach set: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k.bytes(), data)
	})
	if err != nil {
		return fmt.Errorf("write reach cache: %w", err)
	}
	return nil
}

// Len returns the number of cached sets.
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
