package kv

import (
	"bytes"
	"sort"
	"sync"
)

var _ Storage = (*memory)(nil)

type memory struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func NewMemory() Storage {
	return &memory{
		db: make(map[string][]byte),
	}
}

func (m *memory) Get(key []byte) []byte {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[string(key)]
	if !ok {
		return nil
	}
	return bytes.Clone(v)
}

func (m *memory) Has(key []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, ok := m.db[string(key)]
	return ok
}

func (m *memory) Put(key, value []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[string(key)] = bytes.Clone(value)
}

func (m *memory) Delete(key []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.db, string(key))
}

func (m *memory) Prefix(prefix []byte, fn func(key, value []byte) bool) {
	m.lock.RLock()
	keys := make([]string, 0)
	for k := range m.db {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = bytes.Clone(m.db[k])
	}
	m.lock.RUnlock()

	for i, k := range keys {
		if !fn([]byte(k), values[i]) {
			return
		}
	}
}

func (m *memory) NewBatch() Batch {
	return &memoryBatch{db: m}
}

func (m *memory) Close() error {
	return nil
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memoryBatch struct {
	db  *memory
	ops []batchOp
}

func (b *memoryBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: bytes.Clone(key), value: bytes.Clone(value)})
}

func (b *memoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: bytes.Clone(key), delete: true})
}

func (b *memoryBatch) Size() int {
	return len(b.ops)
}

func (b *memoryBatch) Commit() {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for _, op := range b.ops {
		if op.delete {
			delete(b.db.db, string(op.key))
			continue
		}
		b.db.db[string(op.key)] = op.value
	}
	b.ops = nil
}

func (b *memoryBatch) Reset() {
	b.ops = nil
}
