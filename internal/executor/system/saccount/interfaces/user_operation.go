package interfaces

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

type UserOperation struct {
	Sender               ethcommon.Address `json:"sender"`
	Nonce                *big.Int          `json:"nonce"`
	InitCode             []byte            `json:"initCode"`
	CallData             []byte            `json:"callData"`
	CallGasLimit         *big.Int          `json:"callGasLimit"`
	VerificationGasLimit *big.Int          `json:"verificationGasLimit"`
	PreVerificationGas   *big.Int          `json:"preVerificationGas"`
	MaxFeePerGas         *big.Int          `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int          `json:"maxPriorityFeePerGas"`
	PaymasterAndData     []byte            `json:"paymasterAndData"`
	Signature            []byte            `json:"signature"`
}

var (
	nonceSeqMask = new(big.Int).SetUint64(^uint64(0))

	// everything but the signature, dynamic fields replaced by their keccak
	userOpHashArgs = abi.Arguments{
		{Type: common.AddressType},
		{Type: common.BigIntType},
		{Type: common.Bytes32Type},
		{Type: common.Bytes32Type},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.Bytes32Type},
	}
)

// NonceKey is the upper 192 bits of the nonce, each key has its own sequence
func (op *UserOperation) NonceKey() *big.Int {
	return new(big.Int).Rsh(op.Nonce, 64)
}

// NonceSequence is the lower 64 bits of the nonce
func (op *UserOperation) NonceSequence() uint64 {
	return new(big.Int).And(op.Nonce, nonceSeqMask).Uint64()
}

func PackNonce(key *big.Int, seq uint64) *big.Int {
	return new(big.Int).Or(new(big.Int).Lsh(key, 64), new(big.Int).SetUint64(seq))
}

// GetUserOpHash is keccak(keccak(packed op) ++ entryPoint ++ chainID), the digest owners and validators sign
func GetUserOpHash(userOp *UserOperation, entryPoint ethcommon.Address, chainID *big.Int) ethcommon.Hash {
	packed, _ := userOpHashArgs.Pack(
		userOp.Sender,
		userOp.Nonce,
		crypto.Keccak256Hash(userOp.InitCode),
		crypto.Keccak256Hash(userOp.CallData),
		userOp.CallGasLimit,
		userOp.VerificationGasLimit,
		userOp.PreVerificationGas,
		userOp.MaxFeePerGas,
		userOp.MaxPriorityFeePerGas,
		crypto.Keccak256Hash(userOp.PaymasterAndData),
	)
	return crypto.Keccak256Hash(
		crypto.Keccak256(packed),
		ethcommon.LeftPadBytes(entryPoint.Bytes(), 32),
		ethcommon.LeftPadBytes(chainID.Bytes(), 32),
	)
}

// GetGasPrice is the price an operation pays on a chain without base fee
func GetGasPrice(userOp *UserOperation) *big.Int {
	if userOp.MaxFeePerGas.Cmp(userOp.MaxPriorityFeePerGas) < 0 {
		return userOp.MaxFeePerGas
	}
	return userOp.MaxPriorityFeePerGas
}
