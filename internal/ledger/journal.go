package ledger

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// undo reverts a single mutation of the state ledger
type undo func(l *StateLedgerImpl)

// journal keeps the undo of every mutation since the last Finalise, a snapshot is a position in it
type journal struct {
	undos []undo
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) record(u undo) {
	j.undos = append(j.undos, u)
}

// rollback undoes entries newest first until only the first pos remain
func (j *journal) rollback(l *StateLedgerImpl, pos int) {
	for i := len(j.undos) - 1; i >= pos; i-- {
		j.undos[i](l)
	}
	j.undos = j.undos[:pos]
}

func (j *journal) length() int {
	return len(j.undos)
}

func (j *journal) reset() {
	j.undos = nil
}

func undoCreate(addr ethcommon.Address) undo {
	return func(l *StateLedgerImpl) {
		delete(l.accounts, addr)
	}
}

func undoBalance(addr ethcommon.Address, prev *big.Int) undo {
	return func(l *StateLedgerImpl) {
		l.GetOrCreateAccount(addr).(*SimpleAccount).setBalance(prev)
	}
}

func undoCode(addr ethcommon.Address, prev []byte) undo {
	return func(l *StateLedgerImpl) {
		l.GetOrCreateAccount(addr).(*SimpleAccount).setCodeAndHash(prev)
	}
}

func undoState(addr ethcommon.Address, key, prev []byte) undo {
	return func(l *StateLedgerImpl) {
		l.GetOrCreateAccount(addr).(*SimpleAccount).setState(key, prev)
	}
}

func undoLog(l *StateLedgerImpl) {
	l.logs = l.logs[:len(l.logs)-1]
}
