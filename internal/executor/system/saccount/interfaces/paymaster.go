package interfaces

import "math/big"

//go:generate mockgen -destination mock_interfaces/mock_paymaster.go -package mock_interfaces -source paymaster.go

// PostOpMode tells postOp how the operation ended
type PostOpMode uint8

const (
	OpSucceeded PostOpMode = iota
	OpReverted
	// PostOpReverted is the second postOp call, made after the first one reverted
	PostOpReverted
)

func (m PostOpMode) String() string {
	switch m {
	case OpSucceeded:
		return "opSucceeded"
	case OpReverted:
		return "opReverted"
	case PostOpReverted:
		return "postOpReverted"
	default:
		return "unknown"
	}
}

// IPaymaster sponsors operations out of its entry point deposit
type IPaymaster interface {
	// ValidatePaymasterUserOp is called by the entry point only and reverts to refuse sponsoring.
	// maxCost is locked from the deposit, the unused part is returned after PostOp.
	ValidatePaymasterUserOp(userOp UserOperation, userOpHash [32]byte, maxCost *big.Int) (context []byte, validationData *big.Int, err error)

	PostOp(mode uint8, context []byte, actualGasCost *big.Int) error
}
