package ledger

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr/kv"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

// Ledger pairs the block history with the world state it leads to
type Ledger struct {
	ChainLedger ChainLedger
	StateLedger StateLedger
}

// BlockData is what a block leaves behind once executed
type BlockData struct {
	Header   *BlockHeader
	Receipts []*Receipt
}

// NewLedgerWithStores builds a ledger on the given stores, a nil store is opened through storagemgr
func NewLedgerWithStores(rep *repo.Repo, chainStore kv.Storage, stateStore kv.Storage) (*Ledger, error) {
	l := &Ledger{}
	if chainStore == nil {
		chain, err := NewChainLedger(rep)
		if err != nil {
			return nil, errors.Wrap(err, "init chain ledger")
		}
		l.ChainLedger = chain
	} else {
		chain, err := newChainLedger(rep, chainStore)
		if err != nil {
			return nil, errors.Wrap(err, "init chain ledger")
		}
		l.ChainLedger = chain
	}

	if stateStore == nil {
		state, err := NewStateLedger(rep)
		if err != nil {
			return nil, errors.Wrap(err, "init state ledger")
		}
		l.StateLedger = state
	} else {
		state, err := newStateLedger(rep, stateStore)
		if err != nil {
			return nil, errors.Wrap(err, "init state ledger")
		}
		l.StateLedger = state
	}
	return l, nil
}

func NewLedger(rep *repo.Repo) (*Ledger, error) {
	return NewLedgerWithStores(rep, nil, nil)
}

// NewMemory is a ledger that lives and dies with the process
func NewMemory(rep *repo.Repo) (*Ledger, error) {
	return NewLedgerWithStores(rep, kv.NewMemory(), kv.NewMemory())
}

// PersistBlockData commits the state before the chain meta moves, a crash in between leaves the
// previous head pointing at a state that is ahead of it, never behind
func (l *Ledger) PersistBlockData(data *BlockData) error {
	start := time.Now()
	if err := l.StateLedger.Commit(); err != nil {
		return errors.Wrapf(err, "commit state of block %d", data.Header.Number)
	}
	if err := l.ChainLedger.PersistExecutionResult(data.Header, data.Receipts); err != nil {
		return err
	}
	persistBlockDuration.Observe(time.Since(start).Seconds())
	blockHeightMetric.Set(float64(data.Header.Number))
	return nil
}

func (l *Ledger) Close() {
	l.ChainLedger.Close()
	l.StateLedger.Close()
}
