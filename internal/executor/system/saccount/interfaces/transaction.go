package interfaces

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

type Operation uint8

const (
	Call Operation = iota
	DelegateCall
)

// Transaction is the call an account owner authorizes through execTransaction
type Transaction struct {
	To        ethcommon.Address
	Value     *big.Int
	Data      []byte
	Operation uint8
	// gas forwarded to the call, zero forwards all remaining gas
	TargetTxGas *big.Int
}

// FeeRefund describes how the account pays back the relayer
type FeeRefund struct {
	BaseGas  *big.Int
	GasPrice *big.Int
	// multiplier applied to token refunds, zero acts as one
	TokenGasPriceFactor *big.Int
	// zero address pays in native currency
	GasToken ethcommon.Address
	// zero address pays tx.origin
	RefundReceiver ethcommon.Address
}

func EmptyFeeRefund() FeeRefund {
	return FeeRefund{
		BaseGas:             new(big.Int),
		GasPrice:            new(big.Int),
		TokenGasPriceFactor: new(big.Int),
	}
}
