package ledger

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr"
	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr/kv"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var _ StateLedger = (*StateLedgerImpl)(nil)

type revision struct {
	id           int
	journalIndex int
}

type StateLedgerImpl struct {
	logger  logrus.FieldLogger
	backend kv.Storage

	// committed accounts
	accountCache *lru.Cache

	accounts map[ethcommon.Address]IAccount

	validRevisions []revision
	nextRevisionId int
	journal        *journal

	logs []*ethtypes.Log
}

func newStateLedger(rep *repo.Repo, backend kv.Storage) (*StateLedgerImpl, error) {
	cacheSize := rep.Config.Ledger.AccountCacheSize
	if cacheSize <= 0 {
		cacheSize = repo.DefaultConfig().Ledger.AccountCacheSize
	}
	accountCache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create account cache")
	}

	return &StateLedgerImpl{
		logger:       loggers.Logger(loggers.Ledger),
		backend:      backend,
		accountCache: accountCache,
		accounts:     make(map[ethcommon.Address]IAccount),
		journal:      newJournal(),
	}, nil
}

// NewStateLedger create a new ledger instance
func NewStateLedger(rep *repo.Repo) (StateLedger, error) {
	stateStorage, err := storagemgr.Open(storagemgr.GetLedgerComponentPath(rep, storagemgr.Ledger))
	if err != nil {
		return nil, fmt.Errorf("create stateDB: %w", err)
	}

	return newStateLedger(rep, stateStorage)
}

// NewMemoryStateLedger returns a ledger backed by a fresh in-memory storage
func NewMemoryStateLedger(rep *repo.Repo) StateLedger {
	l, err := newStateLedger(rep, kv.NewMemory())
	if err != nil {
		panic(err)
	}
	return l
}

// GetOrCreateAccount returns the account at addr, a fresh one is journaled so a revert removes it
func (l *StateLedgerImpl) GetOrCreateAccount(addr ethcommon.Address) IAccount {
	if account := l.GetAccount(addr); account != nil {
		return account
	}
	account := NewAccount(l.backend, addr, l.journal, l.logger)
	l.journal.record(undoCreate(addr))
	l.accounts[addr] = account
	l.logger.WithField("addr", addr).Debug("Create account")
	return account
}

// GetAccount returns nil when addr was never written
func (l *StateLedgerImpl) GetAccount(addr ethcommon.Address) IAccount {
	if account, ok := l.accounts[addr]; ok {
		return account
	}
	inner := l.loadInnerAccount(addr)
	if inner == nil {
		return nil
	}
	account := NewAccount(l.backend, addr, l.journal, l.logger)
	account.originAccount = inner
	l.accounts[addr] = account
	return account
}

// loadInnerAccount reads the committed account through the lru cache, callers own the returned copy
func (l *StateLedgerImpl) loadInnerAccount(addr ethcommon.Address) *InnerAccount {
	if cached, ok := l.accountCache.Get(addr); ok {
		accountCacheHitCounter.Inc()
		return cached.(*InnerAccount).CopyOrNewIfEmpty()
	}
	accountCacheMissCounter.Inc()

	start := time.Now()
	raw := l.backend.Get(compositeAccountKey(addr))
	accountReadDuration.Observe(time.Since(start).Seconds())
	if raw == nil {
		return nil
	}
	inner := &InnerAccount{Balance: big.NewInt(0)}
	if err := inner.Unmarshal(raw); err != nil {
		panic(errors.Wrapf(err, "corrupted account %s", addr))
	}
	l.accountCache.Add(addr, inner.CopyOrNewIfEmpty())
	l.logger.WithFields(logrus.Fields{"addr": addr, "balance": inner.Balance}).Debug("Load account")
	return inner
}

func (l *StateLedgerImpl) GetBalance(addr ethcommon.Address) *big.Int {
	account := l.GetAccount(addr)
	if account == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(account.GetBalance())
}

func (l *StateLedgerImpl) SetBalance(addr ethcommon.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).SetBalance(value)
}

func (l *StateLedgerImpl) SubBalance(addr ethcommon.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).SubBalance(value)
}

func (l *StateLedgerImpl) AddBalance(addr ethcommon.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).AddBalance(value)
}

func (l *StateLedgerImpl) GetState(addr ethcommon.Address, key []byte) (bool, []byte) {
	account := l.GetAccount(addr)
	if account == nil {
		return false, nil
	}
	return account.GetState(key)
}

func (l *StateLedgerImpl) SetState(addr ethcommon.Address, key []byte, v []byte) {
	l.GetOrCreateAccount(addr).SetState(key, v)
}

func (l *StateLedgerImpl) SetCode(addr ethcommon.Address, code []byte) {
	l.GetOrCreateAccount(addr).SetCodeAndHash(code)
}

func (l *StateLedgerImpl) GetCode(addr ethcommon.Address) []byte {
	account := l.GetAccount(addr)
	if account == nil {
		return nil
	}
	return account.Code()
}

func (l *StateLedgerImpl) GetCodeHash(addr ethcommon.Address) ethcommon.Hash {
	account := l.GetAccount(addr)
	if account == nil {
		return ethcommon.Hash{}
	}
	return ethcommon.BytesToHash(account.CodeHash())
}

func (l *StateLedgerImpl) Exist(addr ethcommon.Address) bool {
	account := l.GetAccount(addr)
	return account != nil && !account.IsEmpty()
}

func (l *StateLedgerImpl) Empty(addr ethcommon.Address) bool {
	return !l.Exist(addr)
}

func (l *StateLedgerImpl) AddLog(log *ethtypes.Log) {
	log.Index = uint(len(l.logs))
	l.journal.record(undoLog)
	l.logs = append(l.logs, log)
}

func (l *StateLedgerImpl) Logs() []*ethtypes.Log {
	return l.logs
}

func (l *StateLedgerImpl) Snapshot() int {
	id := l.nextRevisionId
	l.nextRevisionId++
	l.validRevisions = append(l.validRevisions, revision{id: id, journalIndex: l.journal.length()})
	return id
}

func (l *StateLedgerImpl) RevertToSnapshot(revid int) {
	idx := sort.Search(len(l.validRevisions), func(i int) bool {
		return l.validRevisions[i].id >= revid
	})
	if idx == len(l.validRevisions) || l.validRevisions[idx].id != revid {
		panic(errors.Errorf("revert to unknown snapshot %d", revid))
	}
	snap := l.validRevisions[idx].journalIndex

	l.journal.rollback(l, snap)
	l.validRevisions = l.validRevisions[:idx]
}

func (l *StateLedgerImpl) JournalLength() int {
	return l.journal.length()
}

func (l *StateLedgerImpl) Finalise() {
	l.journal.reset()
	l.validRevisions = l.validRevisions[:0]
	l.nextRevisionId = 0
}

// Commit writes every dirty account in a single batch
func (l *StateLedgerImpl) Commit() error {
	start := time.Now()
	l.Finalise()

	addrs := make([]ethcommon.Address, 0, len(l.accounts))
	for addr := range l.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})

	batch := l.backend.NewBatch()
	dirtyCount := 0
	for _, addr := range addrs {
		account := l.accounts[addr].(*SimpleAccount)
		if !account.dirty() {
			continue
		}
		dirtyCount++
		inner, err := account.flush(batch)
		if err != nil {
			return errors.Wrapf(err, "flush account %s", addr)
		}
		if inner != nil {
			l.accountCache.Add(addr, inner.CopyOrNewIfEmpty())
		}
	}
	batch.Commit()

	l.accounts = make(map[ethcommon.Address]IAccount)
	l.logs = nil
	commitDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	dirtyAccountCounter.Set(float64(dirtyCount))
	l.logger.WithFields(logrus.Fields{
		"accounts": dirtyCount,
		"elapsed":  time.Since(start),
	}).Debug("Commit state")
	return nil
}

// Close close the ledger instance
func (l *StateLedgerImpl) Close() {
	_ = l.backend.Close()
}
