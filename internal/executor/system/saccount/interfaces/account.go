package interfaces

import (
	"encoding/binary"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	SigValidationSucceeded = 0
	SigValidationFailed    = 1
)

// MaxUint48 is the validUntil of validation data that never expires
var MaxUint48 = new(big.Int).SetUint64(1<<48 - 1)

// Validation is the unpacked form of the uint256 returned by validateUserOp and validatePaymasterUserOp
type Validation struct {
	// SigValidation is SigValidationSucceeded or SigValidationFailed, an aggregator address counts as failed
	SigValidation uint

	ValidUntil uint64
	ValidAfter uint64
}

// The validation word is big endian: validAfter (6 bytes) | validUntil (6 bytes) | aggregator (20 bytes).
const (
	validAfterAt = 0
	validUntilAt = 6
	aggregatorAt = 12
)

func ParseValidationData(validationData *big.Int) *Validation {
	if validationData == nil {
		return nil
	}
	word, _ := uint256.FromBig(validationData)
	raw := word.Bytes32()

	v := &Validation{
		SigValidation: SigValidationFailed,
		ValidAfter:    getUint48(raw[validAfterAt:]),
		ValidUntil:    getUint48(raw[validUntilAt:]),
	}
	if ethcommon.BytesToAddress(raw[aggregatorAt:]) == (ethcommon.Address{}) {
		v.SigValidation = SigValidationSucceeded
	}
	if v.ValidUntil == 0 {
		v.ValidUntil = MaxUint48.Uint64()
	}
	return v
}

func PackValidationData(validation *Validation) *big.Int {
	if validation == nil {
		return nil
	}
	var raw [32]byte
	putUint48(raw[validAfterAt:], validation.ValidAfter)
	putUint48(raw[validUntilAt:], validation.ValidUntil)
	binary.BigEndian.PutUint64(raw[24:], uint64(validation.SigValidation))
	return new(big.Int).SetBytes(raw[:])
}

// IntersectTimeRange merges account and paymaster validation, the result holds only where both do
func IntersectTimeRange(account *Validation, paymasterValidationData *big.Int) *Validation {
	if account == nil || paymasterValidationData == nil {
		return nil
	}
	paymaster := ParseValidationData(paymasterValidationData)

	merged := &Validation{
		SigValidation: account.SigValidation,
		ValidAfter:    max(account.ValidAfter, paymaster.ValidAfter),
		ValidUntil:    min(account.ValidUntil, paymaster.ValidUntil),
	}
	if merged.SigValidation == SigValidationSucceeded {
		merged.SigValidation = paymaster.SigValidation
	}
	return merged
}

// ValidAt reports whether now lies in [ValidAfter, ValidUntil]
func (v *Validation) ValidAt(now uint64) bool {
	return now >= v.ValidAfter && now <= v.ValidUntil
}

func getUint48(b []byte) uint64 {
	var buf [8]byte
	copy(buf[2:], b[:6])
	return binary.BigEndian.Uint64(buf[:])
}

func putUint48(b []byte, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	copy(b[:6], buf[2:])
}
