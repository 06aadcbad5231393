package interfaces

import (
	"math/big"
)

//go:generate mockgen -destination mock_interfaces/mock_module.go -package mock_interfaces -source module.go

var (
	// EIP1271MagicValue is bytes4(keccak256("isValidSignature(bytes32,bytes)"))
	EIP1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

	InvalidSignatureValue = [4]byte{0xff, 0xff, 0xff, 0xff}
)

// IModule validates signatures on behalf of an account that enabled it
type IModule interface {
	// ValidateUserOp returns packed validation data for a user operation carrying the module signature
	ValidateUserOp(userOp UserOperation, userOpHash [32]byte) (*big.Int, error)

	// IsValidSignature returns EIP1271MagicValue if moduleSignature is valid for dataHash, the caller is the account
	IsValidSignature(dataHash [32]byte, moduleSignature []byte) ([4]byte, error)
}

type ISignatureValidator interface {
	IsValidSignature(hash [32]byte, signature []byte) ([4]byte, error)
}
