package interfaces

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// IStakeManager holds native gas deposits on behalf of accounts and paymasters
type IStakeManager interface {
	BalanceOf(account ethcommon.Address) (*big.Int, error)

	// DepositTo credits msg.value to account
	DepositTo(account ethcommon.Address) error

	// WithdrawTo sends withdrawAmount of the caller's deposit to withdrawAddress
	WithdrawTo(withdrawAddress ethcommon.Address, withdrawAmount *big.Int) error
}
