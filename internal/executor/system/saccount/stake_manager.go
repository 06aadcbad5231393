package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var _ interfaces.IStakeManager = (*StakeManager)(nil)

// StakeManager keeps the gas deposits of accounts and paymasters, the entry point balance backs all of them
type StakeManager struct {
	*common.SystemContractBase

	deposits *common.VMMap[ethcommon.Address, *big.Int]
}

func newStakeManager(base *common.SystemContractBase, slot []byte) *StakeManager {
	return &StakeManager{
		SystemContractBase: base,
		deposits:           common.NewVMMap[ethcommon.Address, *big.Int](base.StateAccount, slot, common.AddressKey),
	}
}

func (sm *StakeManager) BalanceOf(account ethcommon.Address) (*big.Int, error) {
	return sm.deposit(account)
}

// DepositTo adds the call value to the deposit of account
func (sm *StakeManager) DepositTo(account ethcommon.Address) error {
	total, err := sm.incrementDeposit(account, sm.Ctx.Value)
	if err != nil {
		return err
	}
	return sm.EmitEvent(&EventDeposited{Account: account, TotalDeposit: total})
}

// WithdrawTo sends amount of the caller deposit to withdrawAddress
func (sm *StakeManager) WithdrawTo(withdrawAddress ethcommon.Address, withdrawAmount *big.Int) error {
	current, err := sm.deposit(sm.Ctx.From)
	if err != nil {
		return err
	}
	if withdrawAmount.Sign() < 0 || current.Cmp(withdrawAmount) < 0 {
		return packer.NewRevertStringError("Withdraw amount too large")
	}
	if err := sm.deposits.Put(sm.Ctx.From, new(big.Int).Sub(current, withdrawAmount)); err != nil {
		return err
	}
	if err := sm.EmitEvent(&EventWithdrawn{Account: sm.Ctx.From, WithdrawAddress: withdrawAddress, Amount: withdrawAmount}); err != nil {
		return err
	}
	if _, err := sm.Ctx.VM.Call(sm.Ctx, withdrawAddress, withdrawAmount, nil, sm.Ctx.Gas.Remaining()); err != nil {
		return packer.NewRevertStringError("failed to withdraw")
	}
	return nil
}

func (sm *StakeManager) deposit(account ethcommon.Address) (*big.Int, error) {
	exist, amount, err := sm.deposits.Get(account)
	if err != nil {
		return nil, err
	}
	if !exist || amount == nil {
		return new(big.Int), nil
	}
	return amount, nil
}

func (sm *StakeManager) incrementDeposit(account ethcommon.Address, amount *big.Int) (*big.Int, error) {
	current, err := sm.deposit(account)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(current, amount)
	return total, sm.deposits.Put(account, total)
}

// decrementDeposit returns false and leaves the deposit untouched if it does not cover amount
func (sm *StakeManager) decrementDeposit(account ethcommon.Address, amount *big.Int) (bool, error) {
	current, err := sm.deposit(account)
	if err != nil {
		return false, err
	}
	if current.Cmp(amount) < 0 {
		return false, nil
	}
	return true, sm.deposits.Put(account, new(big.Int).Sub(current, amount))
}
