package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
)

// Data keys: 'p' + big-endian timestamp + big-endian id. The sequence
// counter lives under its own key outside the 'p' prefix.
var (
	dataPrefix = []byte("p")
	seqKey     = []byte("!seq:points")
)

// seqBandwidth is how many ids a sequence lease reserves at once. Ids may
// skip after a restart; they stay unique and increasing.
const seqBandwidth = 100

// Store implements storage.Store using BadgerDB (LSM tree)
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Config holds BadgerDB configuration
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool

	// MaxMemoryMB limits BadgerDB memory usage in MB (0 = defaults).
	// Recommended: 64-128 MB for local dev, 256-512 MB for servers
	MaxMemoryMB int64
}

// New creates a BadgerDB storage backend
func New(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	// BadgerDB defaults assume a dedicated server (64 MB memtable,
	// 5 memtables, 2 GB value log files). Self-hosted boards share the
	// machine, so bound every memory consumer.
	var memTableSize int64
	if cfg.MaxMemoryMB > 0 {
		memTableSize = cfg.MaxMemoryMB * 1024 * 1024 / 3
	} else {
		// 16 MB memtable is the floor; below that flushes get excessive.
		memTableSize = 16 * 1024 * 1024
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithNumMemtables(3).
		WithBlockCacheSize(memTableSize / 2).
		WithIndexCacheSize(memTableSize / 4).
		WithMaxLevels(4).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithNumCompactors(2). // badger.Open rejects 1: "Cannot have 1 compactor. Need at least 2"
		WithValueLogMaxEntries(5000).
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	seq, err := db.GetSequence(seqKey, seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// Insert stores one point under a time-ordered key and returns its id
func (s *Store) Insert(ctx context.Context, ts time.Time, value float64, meta json.RawMessage) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	next, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	id := int64(next) + 1 // the sequence starts at 0, ids at 1

	p := point.Point{
		ID: id,
		// Microsecond precision, same as the SQL backends.
		Timestamp: time.UnixMicro(ts.UnixMicro()).UTC(),
		Value:     value,
		Meta:      point.NormalizeMeta(meta),
	}

	val, err := encodePoint(p)
	if err != nil {
		return 0, fmt.Errorf("failed to encode point: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(p.Timestamp, uint64(id)), val)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write point: %w", err)
	}
	return id, nil
}

// Query retrieves points within the requested range. Keys sort by
// timestamp then id, so a prefix scan already yields query order.
func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]point.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var untilUsec int64
	if req.Until != nil {
		untilUsec = req.Until.UTC().UnixMicro()
	}

	var results []point.Point
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		opts.Prefix = dataPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		if req.Since != nil {
			// Seek to the first key at or after the lower bound.
			it.Seek(makeKey(req.Since.UTC(), 0))
		} else {
			it.Rewind()
		}

		for ; it.Valid(); it.Next() {
			item := it.Item()

			if req.Until != nil {
				usec, _ := parseKey(item.Key())
				if usec > untilUsec {
					break
				}
			}

			err := item.Value(func(val []byte) error {
				p, err := decodePoint(val)
				if err != nil {
					return fmt.Errorf("failed to decode point: %w", err)
				}
				results = append(results, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &storage.Stats{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = dataPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			usec, _ := parseKey(it.Item().Key())
			ts := time.UnixMicro(usec).UTC()

			if stats.TotalPoints == 0 {
				// Keys iterate in time order, the first is the oldest.
				stats.OldestPoint = ts
			}
			stats.NewestPoint = ts
			stats.TotalPoints++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lsmSize, vlogSize := s.db.Size()
	stats.SizeBytes = uint64(lsmSize + vlogSize)

	return stats, nil
}

// RunGC runs BadgerDB's value log garbage collection, reclaiming disk
// space from deleted or rewritten values. discardRatio is the fraction of
// a file that must be garbage before it is rewritten (0.5 = 50%).
func (s *Store) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Close releases the id sequence and shuts down BadgerDB cleanly
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("failed to release id sequence: %w", err)
	}
	return s.db.Close()
}

// makeKey creates a sortable key: prefix + timestamp + id.
// Format: ['p'][timestamp micros, sign-flipped (8 bytes)][id (8 bytes)]
// Flipping the sign bit makes pre-1970 timestamps sort before the epoch
// in unsigned byte order.
func makeKey(ts time.Time, id uint64) []byte {
	key := make([]byte, 17)
	key[0] = dataPrefix[0]
	binary.BigEndian.PutUint64(key[1:9], uint64(ts.UnixMicro())^(1<<63))
	binary.BigEndian.PutUint64(key[9:17], id)
	return key
}

// parseKey extracts timestamp micros and id from a storage key
func parseKey(key []byte) (int64, uint64) {
	usec := int64(binary.BigEndian.Uint64(key[1:9]) ^ (1 << 63))
	id := binary.BigEndian.Uint64(key[9:17])
	return usec, id
}

// encodePoint serializes a point to bytes
func encodePoint(p point.Point) ([]byte, error) {
	return json.Marshal(p)
}

// decodePoint deserializes bytes to a point
func decodePoint(data []byte) (point.Point, error) {
	var p point.Point
	err := json.Unmarshal(data, &p)
	return p, err
}
