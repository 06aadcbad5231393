package common

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

const entered uint8 = 2

// ReentrancyGuard is a nonReentrant lock persisted in a contract slot, so it is shared by every
// instance built over the same account within a transaction
type ReentrancyGuard struct {
	status *VMSlot[uint8]
}

func NewReentrancyGuard(contractAccount ledger.IAccount, slot []byte) *ReentrancyGuard {
	return &ReentrancyGuard{status: NewVMSlot[uint8](contractAccount, slot)}
}

// Enter takes the lock or reverts with ReentrancyGuardReentrantCall()
func (rg *ReentrancyGuard) Enter() error {
	if rg.IsEntered() {
		return NewRevertError("ReentrancyGuardReentrantCall", abi.Arguments{}, nil)
	}
	return rg.status.Put(entered)
}

// Exit clears the slot instead of writing the not-entered value
func (rg *ReentrancyGuard) Exit() {
	rg.status.Delete()
}

func (rg *ReentrancyGuard) IsEntered() bool {
	exist, status, err := rg.status.Get()
	return err == nil && exist && status == entered
}
