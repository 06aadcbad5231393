package ledger

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type StateLedger interface {
	StateAccessor

	AddLog(log *ethtypes.Log)

	// Logs returns the logs emitted since the last Commit
	Logs() []*ethtypes.Log

	// Snapshot returns a revision id that RevertToSnapshot can roll back to
	Snapshot() int

	RevertToSnapshot(int)

	// JournalLength is the number of journaled changes since the last Finalise
	JournalLength() int

	// Finalise makes all journaled changes irreversible
	Finalise()

	// Commit finalises and writes all dirty accounts in one batch
	Commit() error

	Close()
}

// StateAccessor reads and writes accounts, reads of unknown addresses return zero values
type StateAccessor interface {
	GetOrCreateAccount(ethcommon.Address) IAccount
	// GetAccount is nil for an address that was never written
	GetAccount(ethcommon.Address) IAccount

	GetBalance(ethcommon.Address) *big.Int
	SetBalance(ethcommon.Address, *big.Int)
	SubBalance(ethcommon.Address, *big.Int)
	AddBalance(ethcommon.Address, *big.Int)

	GetState(ethcommon.Address, []byte) (bool, []byte)
	// SetState with a nil value deletes the key
	SetState(ethcommon.Address, []byte, []byte)

	SetCode(ethcommon.Address, []byte)
	GetCode(ethcommon.Address) []byte
	GetCodeHash(ethcommon.Address) ethcommon.Hash

	// Exist is false for accounts without balance and code, even if they have storage
	Exist(ethcommon.Address) bool
	Empty(ethcommon.Address) bool
}

type IAccount interface {
	fmt.Stringer

	GetAddress() ethcommon.Address

	GetState(key []byte) (bool, []byte)

	SetState(key []byte, value []byte)

	SetCodeAndHash(code []byte)

	Code() []byte

	CodeHash() []byte

	SetBalance(balance *big.Int)

	GetBalance() *big.Int

	SubBalance(amount *big.Int)

	AddBalance(amount *big.Int)

	IsEmpty() bool
}
