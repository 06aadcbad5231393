package storagemgr

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr/kv"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

// Components of the repo storage dir
const (
	Ledger     = "ledger"
	BlockChain = "blockchain"
)

// manager shares one kv.Storage per path for the whole process
type manager struct {
	mu       sync.Mutex
	kvType   string
	pebble   kv.PebbleOptions
	storages map[string]kv.Storage
}

var mgr = &manager{
	kvType:   repo.KVStorageTypeMemory,
	storages: make(map[string]kv.Storage),
}

// Initialize selects the backend Open uses, until it is called everything is kept in memory
func Initialize(cfg *repo.Config) error {
	if err := checkKVType(cfg.Storage.KvType); err != nil {
		return err
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.kvType = cfg.Storage.KvType
	mgr.pebble = kv.PebbleOptions{
		CacheSize:             cfg.Storage.Pebble.CacheSize * 1024 * 1024,
		MaxOpenFiles:          cfg.Storage.Pebble.MaxOpenFiles,
		L0CompactionThreshold: cfg.Storage.Pebble.L0CompactionThreshold,
		L0StopWritesThreshold: cfg.Storage.Pebble.L0StopWritesThreshold,
		Sync:                  cfg.Storage.Sync,
	}
	return nil
}

func checkKVType(typ string) error {
	switch typ {
	case repo.KVStorageTypePebble, repo.KVStorageTypeMemory:
		return nil
	default:
		return errors.Errorf("unknow kv type %s, expect pebble or memory", typ)
	}
}

// Open returns the storage at p, opening it with the configured backend on first use
func Open(p string) (kv.Storage, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if s, ok := mgr.storages[p]; ok {
		return s, nil
	}

	var (
		s   kv.Storage
		err error
	)
	if mgr.kvType == repo.KVStorageTypePebble {
		s, err = kv.NewPebble(p, mgr.pebble, loggers.Logger(loggers.Storage))
		if err != nil {
			return nil, errors.Wrapf(err, "open pebble at %s", p)
		}
	} else {
		s = kv.NewMemory()
	}
	mgr.storages[p] = s
	return s, nil
}

// Close closes and forgets the storage opened at p
func Close(p string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	s, ok := mgr.storages[p]
	if !ok {
		return nil
	}
	delete(mgr.storages, p)
	return s.Close()
}

func GetLedgerComponentPath(rep *repo.Repo, component string) string {
	return repo.GetStoragePath(rep.RepoRoot, component)
}
