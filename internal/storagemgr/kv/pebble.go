package kv

import (
	"bytes"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"
)

var _ Storage = (*pebbleStorage)(nil)

type PebbleOptions struct {
	// unit: bytes
	CacheSize             int64
	MaxOpenFiles          int
	L0CompactionThreshold int
	L0StopWritesThreshold int
	Sync                  bool
}

type pebbleStorage struct {
	db     *pebble.DB
	wo     *pebble.WriteOptions
	logger logrus.FieldLogger
}

func NewPebble(dir string, o PebbleOptions, logger logrus.FieldLogger) (Storage, error) {
	cache := pebble.NewCache(o.CacheSize)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:                 cache,
		FormatMajorVersion:    pebble.FormatNewest,
		L0CompactionThreshold: o.L0CompactionThreshold,
		L0StopWritesThreshold: o.L0StopWritesThreshold,
		// When the maximum number of bytes for a level is exceeded, compaction is requested.
		LBaseMaxBytes: 64 << 20,
		Levels:        make([]pebble.LevelOptions, 7),
		MaxOpenFiles:  o.MaxOpenFiles,
		// Writes are stopped when the sum of the queued memtable sizes exceeds MemTableStopWritesThreshold*MemTableSize.
		MemTableSize:                64 << 20,
		MemTableStopWritesThreshold: 4,
		MaxConcurrentCompactions:    func() int { return 4 },
		Logger:                      logger,
	}

	for i := 0; i < len(opts.Levels); i++ {
		l := &opts.Levels[i]
		l.BlockSize = 32 << 10
		l.IndexBlockSize = 256 << 10
		if i > 0 {
			l.TargetFileSize = opts.Levels[i-1].TargetFileSize * 2
		}
		l.EnsureDefaults()
	}
	opts.FlushSplitBytes = opts.Levels[0].TargetFileSize
	opts.EnsureDefaults()

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, err
	}

	return &pebbleStorage{
		db:     db,
		wo:     &pebble.WriteOptions{Sync: o.Sync},
		logger: logger,
	}, nil
}

func (s *pebbleStorage) Get(key []byte) []byte {
	data, closer, err := s.db.Get(key)
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			s.logger.Errorf("pebble get %x failed: %v", key, err)
		}
		return nil
	}
	defer func() {
		if err := closer.Close(); err != nil {
			s.logger.Errorf("pebble close value of %x failed: %v", key, err)
		}
	}()

	// data is only valid until closer is closed
	return bytes.Clone(data)
}

func (s *pebbleStorage) Has(key []byte) bool {
	return s.Get(key) != nil
}

func (s *pebbleStorage) Put(key, value []byte) {
	if err := s.db.Set(key, value, s.wo); err != nil {
		panic(err)
	}
}

func (s *pebbleStorage) Delete(key []byte) {
	if err := s.db.Delete(key, s.wo); err != nil {
		panic(err)
	}
}

func (s *pebbleStorage) Prefix(prefix []byte, fn func(key, value []byte) bool) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		panic(err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(bytes.Clone(iter.Key()), bytes.Clone(iter.Value())) {
			return
		}
	}
}

func (s *pebbleStorage) NewBatch() Batch {
	return &pebbleBatch{batch: s.db.NewBatch(), wo: s.wo}
}

func (s *pebbleStorage) Close() error {
	return s.db.Close()
}

type pebbleBatch struct {
	batch *pebble.Batch
	wo    *pebble.WriteOptions
}

func (b *pebbleBatch) Put(key, value []byte) {
	_ = b.batch.Set(key, value, nil)
}

func (b *pebbleBatch) Delete(key []byte) {
	_ = b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Size() int {
	return int(b.batch.Count())
}

func (b *pebbleBatch) Commit() {
	if err := b.batch.Commit(b.wo); err != nil {
		panic(err)
	}
	b.batch.Reset()
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
}

// upperBound returns the smallest key greater than every key with the prefix
func upperBound(prefix []byte) []byte {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c == 0xff {
			continue
		}
		limit = make([]byte, i+1)
		copy(limit, prefix)
		limit[i] = c + 1
		break
	}
	return limit
}
