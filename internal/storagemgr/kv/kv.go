package kv

// Storage is a flat byte-keyed store, Get returns nil for a missing key
type Storage interface {
	Get(key []byte) []byte
	Has(key []byte) bool
	Put(key, value []byte)
	Delete(key []byte)
	NewBatch() Batch
	// Prefix iterates keys with the given prefix in ascending order until fn returns false
	Prefix(prefix []byte, fn func(key, value []byte) bool)
	Close() error
}

type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Size() int
	Commit()
	Reset()
}
