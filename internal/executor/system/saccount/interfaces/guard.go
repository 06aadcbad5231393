package interfaces

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -destination mock_interfaces/mock_guard.go -package mock_interfaces -source guard.go

// IGuard is consulted by an account around every execution, revert to veto
type IGuard interface {
	CheckTransaction(tx Transaction, batchId *big.Int, refundInfo FeeRefund, signatures []byte, msgSender ethcommon.Address) error

	CheckAfterExecution(txHash [32]byte, success bool) error
}
